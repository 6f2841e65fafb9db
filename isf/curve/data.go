package curve

import (
	"github.com/shpakovkv/isf-converter/isf/wfmpre"
)

type (
	// Sample is one decoded waveform point in physical units.
	// Y holds the point value, or the envelope minimum for envelope
	// acquisitions; YMax holds the envelope maximum and simply repeats
	// Y for everything else.
	Sample struct {
		X    float64
		Y    float64
		YMax float64
	}

	// Iterator walks the curve block lazily, one logical point per step.
	// It performs no I/O and never mutates its inputs, so re-creating it
	// from the same preamble and block replays the same samples.
	Iterator struct {
		preamble *wfmpre.Preamble
		block    []byte
		index    int
		sample   Sample
	}
)
