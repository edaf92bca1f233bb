// Package export writes generated series as CSV for analysis outside the
// plotting tools.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/threephase/internal/sector"
	"github.com/banshee-data/threephase/internal/units"
	"github.com/banshee-data/threephase/internal/waveform"
)

// Header is the column layout of the sample CSV.
var Header = []string{"index", "angle_rad", "angle_deg", "va", "vb", "vc", "sector", "sector_label"}

// CSVWriter wraps csv.Writer with methods for series output.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter creates a CSVWriter writing to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// WriteSeries writes the header and one row per sample. Each row is tagged
// with the sector containing its angle. Returns the number of rows written.
func (c *CSVWriter) WriteSeries(series waveform.Result, sectors sector.Set) (int, error) {
	n := series.Len()
	for _, p := range waveform.Phases {
		if len(series.Phases[p]) != n {
			return 0, fmt.Errorf("%w: phase %s has %d samples, angle series has %d", waveform.ErrInvalidState, p, len(series.Phases[p]), n)
		}
	}

	if err := c.w.Write(Header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(Header))
	for i, a := range series.Angles {
		row[0] = strconv.Itoa(i)
		row[1] = formatFloat(a)
		row[2] = formatFloat(units.ConvertAngle(a, units.DEG))
		row[3] = formatFloat(series.Phases[waveform.PhaseA][i])
		row[4] = formatFloat(series.Phases[waveform.PhaseB][i])
		row[5] = formatFloat(series.Phases[waveform.PhaseC][i])
		if s, ok := sectors.Locate(a); ok {
			row[6] = strconv.Itoa(s.Index)
			row[7] = s.Label
		} else {
			row[6], row[7] = "", ""
		}
		if err := c.w.Write(row); err != nil {
			return i, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return n, fmt.Errorf("flush: %w", err)
	}
	return n, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}
