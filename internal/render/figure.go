// Package render composes generated phase series and sector annotations into
// a figure and writes it as a static image (gonum/plot) or an interactive
// HTML chart (go-echarts).
package render

import (
	"fmt"
	"math"

	"github.com/banshee-data/threephase/internal/monitoring"
	"github.com/banshee-data/threephase/internal/sector"
	"github.com/banshee-data/threephase/internal/waveform"
)

// ErrInvalidState is the error kind returned for inconsistent figure input.
var ErrInvalidState = waveform.ErrInvalidState

var logf = monitoring.Component("render")

// FigureSpec is an immutable snapshot of everything one figure shows.
// Accessors return shared slices that must not be modified.
type FigureSpec struct {
	angles  []float64
	phases  [3][]float64
	sectors sector.Set
	style   Style
	m       float64
}

// NewFigureSpec validates and snapshots the inputs. It fails with
// ErrInvalidState when the angle axis is empty, a phase series length
// differs from it, or there are no sectors.
func NewFigureSpec(series waveform.Result, sectors sector.Set, modulationIndex float64, style Style) (*FigureSpec, error) {
	n := len(series.Angles)
	if n == 0 {
		return nil, fmt.Errorf("%w: angle series is empty", ErrInvalidState)
	}
	for _, p := range waveform.Phases {
		if got := len(series.Phases[p]); got != n {
			return nil, fmt.Errorf("%w: phase %s has %d samples, angle series has %d", ErrInvalidState, p, got, n)
		}
	}
	if sectors.Len() == 0 {
		return nil, fmt.Errorf("%w: sector set is empty", ErrInvalidState)
	}
	if err := style.Validate(); err != nil {
		return nil, err
	}

	spec := &FigureSpec{
		angles: append([]float64(nil), series.Angles...),
		sectors: sector.Set{
			Span:    sectors.Span,
			Sectors: append([]sector.Sector(nil), sectors.Sectors...),
		},
		style: style,
		m:     modulationIndex,
	}
	for _, p := range waveform.Phases {
		spec.phases[p] = append([]float64(nil), series.Phases[p]...)
	}

	if _, ymax, _ := style.YLimits(modulationIndex); math.Abs(modulationIndex) > ymax {
		logf("modulation index %g exceeds y limit %g; curves will be clipped", modulationIndex, ymax)
	}
	return spec, nil
}

// Len returns the number of samples per series.
func (f *FigureSpec) Len() int { return len(f.angles) }

// Angles returns the shared x axis in radians.
func (f *FigureSpec) Angles() []float64 { return f.angles }

// Phase returns the series for p.
func (f *FigureSpec) Phase(p waveform.Phase) []float64 { return f.phases[p] }

// Sectors returns the sector annotation set.
func (f *FigureSpec) Sectors() sector.Set { return f.sectors }

// Style returns the presentation in effect.
func (f *FigureSpec) Style() Style { return f.style }

// ModulationIndex returns the amplitude shown in the title.
func (f *FigureSpec) ModulationIndex() float64 { return f.m }
