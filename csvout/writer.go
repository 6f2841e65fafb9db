// Package csvout renders decoded waveforms as delimited text, one sample
// per line, optionally preceded by the preamble fields as comment lines.
package csvout

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shpakovkv/isf-converter/isf"
	"github.com/shpakovkv/isf-converter/isf/wfmpre"
)

// Write streams the waveform to w. Rows are "X,Y", or "X,Ymin,Ymax" for
// envelope acquisitions. Floats use the shortest decimal form that parses
// back to the same value.
func Write(w io.Writer, waveform *isf.Waveform, includeHeader bool) error {
	buffered := bufio.NewWriter(w)
	if includeHeader {
		if err := writeHeader(buffered, waveform.Preamble); err != nil {
			return err
		}
	}

	records := csv.NewWriter(buffered)
	envelope := waveform.Preamble.PointFormat == wfmpre.PointFormatEnvelope
	it := waveform.Samples()
	for it.Next() {
		sample := it.Sample()
		row := []string{FormatFloat(sample.X), FormatFloat(sample.Y)}
		if envelope {
			row = append(row, FormatFloat(sample.YMax))
		}
		if err := records.Write(row); err != nil {
			return err
		}
	}
	records.Flush()
	if err := records.Error(); err != nil {
		return err
	}
	return buffered.Flush()
}

// writeHeader echoes every preamble field in file order as "# NAME value".
func writeHeader(w io.Writer, preamble *wfmpre.Preamble) error {
	for _, key := range preamble.Fields.Keys() {
		value, _ := preamble.Fields.Get(key)
		if _, err := fmt.Fprintf(w, "# %s %s\n", key, formatValue(value)); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(value any) string {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v)
	case float64:
		return FormatFloat(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatFloat is the one float rendering used for all output, so that
// values round-trip through strconv.ParseFloat exactly.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
