package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/shpakovkv/isf-converter/csvout"
	"github.com/shpakovkv/isf-converter/isf"
	"github.com/shpakovkv/isf-converter/isf/wfmpre"
)

// Convert reads one .isf file, decodes it and writes the csv output.
func Convert(job ConvertJob, head bool, verbose bool) error {
	bs, err := os.ReadFile(job.Source)
	if err != nil {
		return errors.Wrap(err, "reading input")
	}
	waveform, err := isf.Convert(bs)
	if err != nil {
		return err
	}

	out, err := os.Create(job.Dest)
	if err != nil {
		return errors.Wrap(err, "creating output")
	}
	if err := csvout.Write(out, waveform, head); err != nil {
		out.Close()
		return errors.Wrap(err, "writing output")
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, "writing output")
	}

	if verbose {
		printSummary(job.Source, waveform)
	}
	return nil
}

// printSummary reports the signal range of a converted file. The second
// pass over the samples is cheap, the iterator replays the in-memory block.
func printSummary(source string, waveform *isf.Waveform) {
	preamble := waveform.Preamble
	if preamble.NumPoints == 0 {
		fmt.Printf("%s: %s format, 0 points\n", source, preamble.PointFormat)
		return
	}

	ys := make([]float64, 0, preamble.NumPoints*preamble.ValuesPerPoint())
	it := waveform.Samples()
	for it.Next() {
		sample := it.Sample()
		ys = append(ys, sample.Y)
		if preamble.PointFormat == wfmpre.PointFormatEnvelope {
			ys = append(ys, sample.YMax)
		}
	}
	fmt.Printf(
		"%s: %s format, %d points, y min %g max %g mean %g\n",
		source, preamble.PointFormat, preamble.NumPoints,
		floats.Min(ys), floats.Max(ys), stat.Mean(ys, nil),
	)
}
