package curve

import (
	"encoding/binary"

	"github.com/shpakovkv/isf-converter/isf/wfmpre"
)

// NewIterator creates an iterator over the curve block. The preamble is
// assumed to have passed wfmpre validation, in particular
// len(block) == NumPoints * Stride().
func NewIterator(preamble *wfmpre.Preamble, block []byte) *Iterator {
	return &Iterator{
		preamble: preamble,
		block:    block,
	}
}

// Next advances to the following sample and reports whether one was
// produced. Stopping early is always safe.
func (it *Iterator) Next() bool {
	p := it.preamble
	if it.index >= p.NumPoints {
		return false
	}

	i := it.index
	offset := i * p.Stride()
	raw := rawValue(it.block[offset:offset+p.ByteWidth], p.ByteOrder, p.NumberFormat)

	sample := Sample{
		X: p.XZero + (float64(i)-p.XOffset)*p.XIncrement,
		Y: p.YZero + (raw-p.YOffset)*p.YMultiplier,
	}
	if p.PointFormat == wfmpre.PointFormatEnvelope {
		// min comes first in the pair, per the programmer manual
		rawMax := rawValue(
			it.block[offset+p.ByteWidth:offset+2*p.ByteWidth],
			p.ByteOrder, p.NumberFormat,
		)
		sample.YMax = p.YZero + (rawMax-p.YOffset)*p.YMultiplier
	} else {
		sample.YMax = sample.Y
	}

	it.sample = sample
	it.index++
	return true
}

// Sample returns the sample produced by the last successful Next.
func (it *Iterator) Sample() Sample {
	return it.sample
}

// DecodeAll materializes the whole curve at once.
func DecodeAll(preamble *wfmpre.Preamble, block []byte) []Sample {
	samples := make([]Sample, 0, preamble.NumPoints)
	it := NewIterator(preamble, block)
	for it.Next() {
		samples = append(samples, it.Sample())
	}
	return samples
}

// rawValue reinterprets one stored element as its numeric digitizing level.
// The width is 1, 2, 4 or 8 bytes; anything else is rejected upstream.
func rawValue(bs []byte, order wfmpre.ByteOrder, format wfmpre.NumberFormat) float64 {
	value := uint64(0)
	switch len(bs) {
	case 1:
		value = uint64(bs[0])
	case 2:
		if order == wfmpre.ByteOrderLSB {
			value = uint64(binary.LittleEndian.Uint16(bs))
		} else {
			value = uint64(binary.BigEndian.Uint16(bs))
		}
	case 4:
		if order == wfmpre.ByteOrderLSB {
			value = uint64(binary.LittleEndian.Uint32(bs))
		} else {
			value = uint64(binary.BigEndian.Uint32(bs))
		}
	case 8:
		if order == wfmpre.ByteOrderLSB {
			value = binary.LittleEndian.Uint64(bs)
		} else {
			value = binary.BigEndian.Uint64(bs)
		}
	}

	if format == wfmpre.NumberFormatUnsigned {
		return float64(value)
	}
	switch len(bs) {
	case 1:
		return float64(int8(value))
	case 2:
		return float64(int16(value))
	case 4:
		return float64(int32(value))
	default:
		return float64(int64(value))
	}
}
