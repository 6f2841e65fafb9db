package wfmpre

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/iancoleman/orderedmap"
	"github.com/pkg/errors"
	"github.com/shpakovkv/isf-converter/isf/tbytes"
)

const (
	fieldSeparators = "; \t\r\n"
	curveFieldName  = "CURVE"
)

// requiredFields must all appear before the curve block. The remaining
// calibration fields (XZERO, PT_OFF, YZERO, YOFF, ...) default to zero when
// an instrument omits them.
var requiredFields = []string{
	"NR_PT",
	"BYT_NR",
	"ENCDG",
	"BN_FMT",
	"BYT_OR",
	"PT_FMT",
	"XINCR",
	"YMULT",
}

// Decode walks the preamble fields strictly in file order, stops at the
// CURVE field, and returns the assembled Preamble together with the curve
// payload as a zero-copy view into the reader's buffer.
//
// Fields are consumed one by one, never by scanning ahead, so the curve
// marker appearing as a substring of an earlier value (a WFID for example)
// cannot be mistaken for the real one.
func Decode(reader *tbytes.Reader) (*Preamble, []byte, error) {
	fields := orderedmap.New()
	block := []byte(nil)

	for {
		name, err := readFieldName(reader)
		if err != nil {
			return nil, nil, err
		}
		if name == curveFieldName {
			// An ASCII curve is written without the binary size prefix,
			// so the encoding has to be rejected before touching it.
			if err := checkEncoding(fields); err != nil {
				return nil, nil, err
			}
			block, err = readCurveBlock(reader)
			if err != nil {
				return nil, nil, err
			}
			break
		}
		value, err := readFieldValue(reader)
		if err != nil {
			err := errors.Wrapf(err, `reading value of preamble field "%s"`, name)
			return nil, nil, err
		}
		fields.Set(name, parseScalar(value))
	}

	for _, name := range requiredFields {
		if _, ok := fields.Get(name); !ok {
			err := errors.Wrapf(ErrFormat, `missing preamble field "%s"`, name)
			return nil, nil, err
		}
	}

	preamble, err := assemble(fields)
	if err != nil {
		return nil, nil, err
	}
	if err := preamble.validate(len(block)); err != nil {
		return nil, nil, err
	}
	return preamble, block, nil
}

func checkEncoding(fields *orderedmap.OrderedMap) error {
	value, ok := fields.Get("ENCDG")
	if !ok {
		return nil
	}
	encoding, ok := value.(string)
	if !ok {
		return errors.Wrapf(ErrFormat, `malformed encoding field "%v"`, value)
	}
	switch strings.ToUpper(encoding) {
	case "BIN", "BINARY":
		return nil
	}
	return errors.Wrapf(ErrFormat, `unsupported encoding "%s": only binary curve data is supported`, encoding)
}

// readFieldName reads the next field name token and normalizes it to its
// last path segment in upper case, so ":WFMPRE:CH1:WFID", ":WFMPRE:WFID"
// and "WFID" all name the same field.
func readFieldName(reader *tbytes.Reader) (string, error) {
	for {
		c, err := reader.PeekByte()
		if err != nil {
			return "", errors.Wrap(ErrFormat, "preamble ends before the curve block")
		}
		if strings.IndexByte(fieldSeparators, c) < 0 {
			break
		}
		if _, err := reader.ReadByte(); err != nil {
			return "", err
		}
	}
	token, _, err := reader.ReadUntil(" \t")
	if err != nil {
		return "", errors.Wrap(ErrFormat, "preamble ends before the curve block")
	}
	if i := strings.LastIndexByte(token, ':'); i >= 0 {
		token = token[i+1:]
	}
	if token == "" {
		return "", errors.Wrap(ErrFormat, "empty preamble field name")
	}
	return strings.ToUpper(token), nil
}

// readFieldValue reads one field value: either a quoted string running to
// the closing quote (separators inside are part of the value) or a bare
// token running to the next semicolon.
func readFieldValue(reader *tbytes.Reader) (string, error) {
	c, err := reader.PeekByte()
	if err != nil {
		return "", errors.Wrap(ErrFormat, "preamble ends before the curve block")
	}
	if c == '"' {
		if _, err := reader.ReadByte(); err != nil {
			return "", err
		}
		value, _, err := reader.ReadUntil(`"`)
		if err != nil {
			return "", errors.Wrap(ErrFormat, "unterminated quoted value")
		}
		return value, nil
	}
	value, _, err := reader.ReadUntil(";")
	if err != nil {
		return "", errors.Wrap(ErrFormat, "preamble ends before the curve block")
	}
	return strings.TrimSpace(value), nil
}

// readCurveBlock expects the "#<n><byte count>" size prefix right after the
// CURVE field name and returns exactly the declared number of payload bytes.
// Anything after the payload (instruments append a newline) is ignored.
func readCurveBlock(reader *tbytes.Reader) ([]byte, error) {
	c, err := reader.ReadByte()
	if err != nil || c != '#' {
		return nil, errors.Wrap(ErrFormat, `curve block does not start with the "#" size prefix`)
	}
	c, err = reader.ReadByte()
	if err != nil || c < '1' || c > '9' {
		return nil, errors.Wrap(ErrFormat, "malformed curve size prefix")
	}
	digits, err := reader.ReadBytes(int(c - '0'))
	if err != nil {
		return nil, errors.Wrap(ErrFormat, "malformed curve size prefix")
	}
	size, err := strconv.Atoi(string(digits))
	if err != nil {
		return nil, errors.Wrapf(ErrFormat, `malformed curve byte count "%s"`, digits)
	}
	block, err := reader.View(size)
	if err != nil {
		err := errors.Wrapf(
			ErrFormat, "curve block truncated: %d bytes declared, %d available",
			size, reader.Len(),
		)
		return nil, err
	}
	return block, nil
}

// parseScalar mirrors how the instrument writes values: integers and floats
// as plain decimal text, everything else as-is.
func parseScalar(value string) any {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

// assemble creates the typed Preamble from the ordered field set by
//
//   - Copying the fields into a map, then
//   - Creating JSON bytes from the map, and finally
//   - Reading the JSON bytes into the struct
//
// In order to lessen the burden of manual mapping.
func assemble(fields *orderedmap.OrderedMap) (*Preamble, error) {
	fieldMap := map[string]any{}
	for _, key := range fields.Keys() {
		value, _ := fields.Get(key)
		fieldMap[key] = value
	}
	fieldBytes, err := json.Marshal(fieldMap)
	if err != nil {
		err := errors.Wrapf(err, `assemble error marshalling map "%v" to JSON`, fieldMap)
		return nil, err
	}

	preamble := Preamble{}
	if err := json.Unmarshal(fieldBytes, &preamble); err != nil {
		err := errors.Wrapf(ErrFormat, "malformed preamble field: %v", err)
		return nil, err
	}
	preamble.Fields = fields

	return &preamble, nil
}

func (p *Preamble) validate(blockLen int) error {
	p.Encoding = strings.ToUpper(p.Encoding)
	p.NumberFormat = NumberFormat(strings.ToUpper(string(p.NumberFormat)))
	p.ByteOrder = ByteOrder(strings.ToUpper(string(p.ByteOrder)))
	p.PointFormat = PointFormat(strings.ToUpper(string(p.PointFormat)))

	if p.Encoding != "BIN" && p.Encoding != "BINARY" {
		return errors.Wrapf(ErrFormat, `unsupported encoding "%s": only binary curve data is supported`, p.Encoding)
	}
	switch p.NumberFormat {
	case NumberFormatSigned, NumberFormatUnsigned:
	case NumberFormatFloat:
		return errors.Wrap(ErrFormat, `unsupported number format "FP": only integer sample storage is supported`)
	default:
		return errors.Wrapf(ErrFormat, `unknown number format "%s"`, p.NumberFormat)
	}
	switch p.ByteOrder {
	case ByteOrderLSB, ByteOrderMSB:
	default:
		return errors.Wrapf(ErrFormat, `unknown byte order "%s"`, p.ByteOrder)
	}
	switch p.PointFormat {
	case PointFormatY, PointFormatEnvelope:
	default:
		return errors.Wrapf(ErrFormat, `unsupported point format "%s"`, p.PointFormat)
	}
	switch p.ByteWidth {
	case 1, 2, 4, 8:
	default:
		return errors.Wrapf(ErrFormat, "unsupported sample width of %d bytes", p.ByteWidth)
	}
	if p.NumPoints < 0 {
		return errors.Wrapf(ErrFormat, "negative point count %d", p.NumPoints)
	}

	expected := p.NumPoints * p.Stride()
	if blockLen != expected {
		return errors.Wrapf(
			ErrFormat, "data length mismatch: curve block has %d bytes, %d points of %d need %d",
			blockLen, p.NumPoints, p.Stride(), expected,
		)
	}
	return nil
}
