package wfmpre

import (
	"github.com/iancoleman/orderedmap"
	"github.com/pkg/errors"
)

type (
	ByteOrder    string
	PointFormat  string
	NumberFormat string

	// Preamble is the decoded WFMPRE block of an ISF file: the acquisition
	// metadata the oscilloscope writes in front of the curve payload.
	// It is immutable after Decode and fully describes how to interpret
	// the raw samples.
	Preamble struct {
		NumPoints    int          `json:"NR_PT"`
		ByteWidth    int          `json:"BYT_NR"`
		BitWidth     int          `json:"BIT_NR"`
		Encoding     string       `json:"ENCDG"`
		NumberFormat NumberFormat `json:"BN_FMT"`
		ByteOrder    ByteOrder    `json:"BYT_OR"`
		PointFormat  PointFormat  `json:"PT_FMT"`
		XIncrement   float64      `json:"XINCR"`
		XZero        float64      `json:"XZERO"`
		XOffset      float64      `json:"PT_OFF"`
		YMultiplier  float64      `json:"YMULT"`
		YZero        float64      `json:"YZERO"`
		YOffset      float64      `json:"YOFF"`

		// Fields keeps every preamble entry in file order, the typed ones
		// above included, plus whatever else the instrument wrote (WFID,
		// XUNIT, YUNIT, DOMAIN, ...). Used to echo the header on request.
		Fields *orderedmap.OrderedMap `json:"-"`
	}
)

const (
	ByteOrderLSB ByteOrder = "LSB"
	ByteOrderMSB ByteOrder = "MSB"

	PointFormatY        PointFormat = "Y"
	PointFormatEnvelope PointFormat = "ENV"

	NumberFormatSigned   NumberFormat = "RI"
	NumberFormatUnsigned NumberFormat = "RP"
	NumberFormatFloat    NumberFormat = "FP"
)

// ErrFormat is the root of every malformed-file error produced by Decode.
// The wrapped message names the violated expectation.
var ErrFormat = errors.New("not a valid binary ISF file")

// ValuesPerPoint is 2 in envelope format, where each logical point stores
// a min/max pair, and 1 otherwise.
func (p *Preamble) ValuesPerPoint() int {
	if p.PointFormat == PointFormatEnvelope {
		return 2
	}
	return 1
}

// Stride is the number of curve bytes occupied by one logical point.
func (p *Preamble) Stride() int {
	return p.ByteWidth * p.ValuesPerPoint()
}
