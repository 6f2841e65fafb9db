// Package isf decodes Tektronix ISF waveform captures, the binary save
// format of the MDO/MSO series oscilloscopes, into physical (time, voltage)
// samples. The preamble handling lives in wfmpre, the payload decoding in
// curve; this package only composes the two.
package isf

import (
	"github.com/shpakovkv/isf-converter/isf/curve"
	"github.com/shpakovkv/isf-converter/isf/tbytes"
	"github.com/shpakovkv/isf-converter/isf/wfmpre"
)

type (
	// Waveform pairs a validated preamble with its curve payload.
	// Samples can be replayed any number of times.
	Waveform struct {
		Preamble *wfmpre.Preamble
		data     []byte
	}
)

// ErrFormat reports a malformed or unsupported input file.
// Use errors.Is to distinguish it from I/O failures.
var ErrFormat = wfmpre.ErrFormat

// ParseFile decodes and validates the preamble of a buffered ISF file and
// locates the curve payload within it. The returned slice aliases bs.
func ParseFile(bs []byte) (*wfmpre.Preamble, []byte, error) {
	reader := tbytes.NewBytesReader(bs)
	return wfmpre.Decode(reader)
}

// Decode returns a lazy iterator over the curve samples.
func Decode(preamble *wfmpre.Preamble, block []byte) *curve.Iterator {
	return curve.NewIterator(preamble, block)
}

// Convert composes ParseFile and Decode.
func Convert(bs []byte) (*Waveform, error) {
	preamble, block, err := ParseFile(bs)
	if err != nil {
		return nil, err
	}
	return &Waveform{Preamble: preamble, data: block}, nil
}

// Samples starts a fresh pass over the waveform.
func (w *Waveform) Samples() *curve.Iterator {
	return curve.NewIterator(w.Preamble, w.data)
}
