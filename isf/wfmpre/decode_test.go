package wfmpre

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shpakovkv/isf-converter/isf/tbytes"
)

const preambleY4 = ":WFMPRE:NR_PT 4;:WFMPRE:BYT_NR 2;BIT_NR 16;ENCDG BINARY;" +
	"BN_FMT RI;BYT_OR LSB;PT_FMT Y;XINCR 1.0;PT_OFF 0;XZERO 0.0;" +
	"YMULT 0.5;YZERO 0.0;YOFF 0.0;"

func buildFile(preambleText string, payload []byte) []byte {
	count := strconv.Itoa(len(payload))
	curve := fmt.Sprintf(":CURVE #%d%s", len(count), count)
	return append([]byte(preambleText+curve), payload...)
}

func decodeFile(bs []byte) (*Preamble, []byte, error) {
	return Decode(tbytes.NewBytesReader(bs))
}

func TestDecode(t *testing.T) {
	payload := []byte{2, 0, 4, 0, 0xFE, 0xFF, 0, 0}
	preamble, block, err := decodeFile(buildFile(preambleY4, payload))
	require.NoError(t, err)

	assert.Equal(t, 4, preamble.NumPoints)
	assert.Equal(t, 2, preamble.ByteWidth)
	assert.Equal(t, 16, preamble.BitWidth)
	assert.Equal(t, "BINARY", preamble.Encoding)
	assert.Equal(t, NumberFormatSigned, preamble.NumberFormat)
	assert.Equal(t, ByteOrderLSB, preamble.ByteOrder)
	assert.Equal(t, PointFormatY, preamble.PointFormat)
	assert.Equal(t, 1.0, preamble.XIncrement)
	assert.Equal(t, 0.5, preamble.YMultiplier)
	assert.Equal(t, 1, preamble.ValuesPerPoint())
	assert.Equal(t, 2, preamble.Stride())
	assert.Equal(t, payload, block)

	assert.Equal(
		t,
		[]string{
			"NR_PT", "BYT_NR", "BIT_NR", "ENCDG", "BN_FMT", "BYT_OR",
			"PT_FMT", "XINCR", "PT_OFF", "XZERO", "YMULT", "YZERO", "YOFF",
		},
		preamble.Fields.Keys(),
	)
}

func TestDecode_BlockIsZeroCopy(t *testing.T) {
	bs := buildFile(preambleY4, []byte{2, 0, 4, 0, 0xFE, 0xFF, 0, 0})
	_, block, err := decodeFile(bs)
	require.NoError(t, err)

	bs[len(bs)-8] = 42
	assert.Equal(t, byte(42), block[0])
}

func TestDecode_SecondaryFields(t *testing.T) {
	text := `:WFMPRE:WFID "Ch1, DC coupling, 100.0mV/div, 4.000us/div";` +
		`XUNIT "s";YUNIT "V";DOMAIN TIME;` + preambleY4
	preamble, _, err := decodeFile(buildFile(text, make([]byte, 8)))
	require.NoError(t, err)

	wfid, ok := preamble.Fields.Get("WFID")
	require.True(t, ok)
	assert.Equal(t, "Ch1, DC coupling, 100.0mV/div, 4.000us/div", wfid)

	xunit, _ := preamble.Fields.Get("XUNIT")
	assert.Equal(t, "s", xunit)
	domain, _ := preamble.Fields.Get("DOMAIN")
	assert.Equal(t, "TIME", domain)

	assert.Equal(t, "WFID", preamble.Fields.Keys()[0])
}

func TestDecode_CurveMarkerInsideQuotedValue(t *testing.T) {
	// the literal text of the curve field inside a quoted value must not
	// be taken for the real curve block
	text := `WFID "decoy;:CURVE #15abcde";` + preambleY4
	payload := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	preamble, block, err := decodeFile(buildFile(text, payload))
	require.NoError(t, err)
	assert.Equal(t, payload, block)

	wfid, _ := preamble.Fields.Get("WFID")
	assert.Equal(t, "decoy;:CURVE #15abcde", wfid)
}

func TestDecode_RejectsASCIIEncoding(t *testing.T) {
	text := ":WFMPRE:NR_PT 4;BYT_NR 2;ENCDG ASCII;BN_FMT RI;BYT_OR LSB;" +
		"PT_FMT Y;XINCR 1.0;YMULT 1.0;"

	// an ASCII curve carries no binary size prefix at all
	bs := append([]byte(text), []byte(":CURVE 2,4,-2,0")...)
	_, _, err := decodeFile(bs)
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorContains(t, err, "unsupported encoding")
}

func TestDecode_RejectsFloatFormat(t *testing.T) {
	text := ":WFMPRE:NR_PT 2;BYT_NR 4;ENCDG BINARY;BN_FMT FP;BYT_OR LSB;" +
		"PT_FMT Y;XINCR 1.0;YMULT 1.0;"
	_, _, err := decodeFile(buildFile(text, make([]byte, 8)))
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorContains(t, err, `unsupported number format "FP"`)
}

func TestDecode_RejectsBadWidth(t *testing.T) {
	text := ":WFMPRE:NR_PT 2;BYT_NR 3;ENCDG BINARY;BN_FMT RI;BYT_OR LSB;" +
		"PT_FMT Y;XINCR 1.0;YMULT 1.0;"
	_, _, err := decodeFile(buildFile(text, make([]byte, 6)))
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorContains(t, err, "unsupported sample width")
}

func TestDecode_MissingField(t *testing.T) {
	text := ":WFMPRE:NR_PT 4;BYT_NR 2;ENCDG BINARY;BN_FMT RI;BYT_OR LSB;" +
		"PT_FMT Y;XINCR 1.0;" // no YMULT
	_, _, err := decodeFile(buildFile(text, make([]byte, 8)))
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorContains(t, err, `missing preamble field "YMULT"`)
}

func TestDecode_DataLengthMismatch(t *testing.T) {
	// 4 points of 2 bytes declared, 6 bytes written
	_, _, err := decodeFile(buildFile(preambleY4, make([]byte, 6)))
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorContains(t, err, "data length mismatch")
}

func TestDecode_TruncatedCurve(t *testing.T) {
	bs := buildFile(preambleY4, make([]byte, 8))
	_, _, err := decodeFile(bs[:len(bs)-1])
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorContains(t, err, "curve block truncated")
}

func TestDecode_MissingCurveBlock(t *testing.T) {
	_, _, err := decodeFile([]byte(preambleY4))
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorContains(t, err, "preamble ends before the curve block")
}

func TestDecode_TrailingNewline(t *testing.T) {
	bs := append(buildFile(preambleY4, make([]byte, 8)), '\n')
	_, block, err := decodeFile(bs)
	assert.NoError(t, err)
	assert.Len(t, block, 8)
}

func TestDecode_Envelope(t *testing.T) {
	text := ":WFMPRE:NR_PT 2;BYT_NR 2;ENCDG BIN;BN_FMT RI;BYT_OR MSB;" +
		"PT_FMT ENV;XINCR 1.0;YMULT 1.0;"

	preamble, _, err := decodeFile(buildFile(text, make([]byte, 8)))
	require.NoError(t, err)
	assert.Equal(t, PointFormatEnvelope, preamble.PointFormat)
	assert.Equal(t, 2, preamble.ValuesPerPoint())
	assert.Equal(t, 4, preamble.Stride())

	// without the doubled stride the same block would not validate
	_, _, err = decodeFile(buildFile(text, make([]byte, 4)))
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorContains(t, err, "data length mismatch")
}

func TestDecode_EmptyCurve(t *testing.T) {
	text := ":WFMPRE:NR_PT 0;BYT_NR 2;ENCDG BINARY;BN_FMT RI;BYT_OR LSB;" +
		"PT_FMT Y;XINCR 1.0;YMULT 1.0;"
	preamble, block, err := decodeFile(buildFile(text, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, preamble.NumPoints)
	assert.Len(t, block, 0)
}

func TestDecode_CaseInsensitiveTokens(t *testing.T) {
	text := ":wfmpre:nr_pt 1;byt_nr 1;encdg binary;bn_fmt ri;byt_or msb;" +
		"pt_fmt y;xincr 1.0;ymult 1.0;"
	preamble, _, err := decodeFile(buildFile(text, []byte{1}))
	require.NoError(t, err)
	assert.Equal(t, ByteOrderMSB, preamble.ByteOrder)
	assert.Equal(t, "BINARY", preamble.Encoding)
}
