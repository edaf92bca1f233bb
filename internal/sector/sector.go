// Package sector partitions a cyclic angular domain into equal sectors and
// assigns each a display colour and label, as used when annotating
// space-vector PWM waveforms.
package sector

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/banshee-data/threephase/internal/monitoring"
	"github.com/banshee-data/threephase/internal/waveform"
)

// ErrInvalidParameter is the error kind returned for a bad count, span or palette.
var ErrInvalidParameter = waveform.ErrInvalidParameter

var logf = monitoring.Component("sector")

// Default palette and labels. Sectors beyond the palette size wrap around.
var (
	DefaultPalette = []string{"#FEBF96", "#D3ECB9", "#D3FFFE"}
	DefaultLabels  = []string{"Sector I", "Sector II", "Sector III"}
)

// Defaults for the reference figure: six sectors over two periods.
const (
	DefaultCount   = 6
	DefaultPeriods = 2
)

// Sector is one contiguous interval [Start, End) of the partitioned domain.
type Sector struct {
	Index    int
	Start    float64
	End      float64
	Color    color.Color
	ColorHex string
	Label    string
}

// Width returns End - Start.
func (s Sector) Width() float64 { return s.End - s.Start }

// Mid returns the horizontal centre of the sector, where its label goes.
func (s Sector) Mid() float64 { return 0.5 * (s.Start + s.End) }

// Set is an ordered, gap-free partition of [0, Span).
type Set struct {
	Span    float64
	Sectors []Sector
}

// Len returns the number of sectors.
func (s Set) Len() int { return len(s.Sectors) }

type options struct {
	palette []string
	labels  []string
}

// Option customises Partition.
type Option func(*options)

// WithPalette replaces the default fill colours. Entries are hex strings.
func WithPalette(hex []string) Option {
	return func(o *options) { o.palette = hex }
}

// WithLabels replaces the default sector labels.
func WithLabels(labels []string) Option {
	return func(o *options) { o.labels = labels }
}

// SpanForPeriods returns the angular span of the given number of
// fundamental periods, in radians.
func SpanForPeriods(periods int) float64 {
	return float64(periods) * 2 * math.Pi
}

// Partition divides [0, totalSpan) into count sectors of equal width.
// Boundaries are computed from the index rather than accumulated so the
// last sector ends exactly at totalSpan.
func Partition(totalSpan float64, count int, opts ...Option) (Set, error) {
	if count <= 0 {
		return Set{}, fmt.Errorf("%w: sector_count must be positive, got %d", ErrInvalidParameter, count)
	}
	if !(totalSpan > 0) || math.IsInf(totalSpan, 0) {
		return Set{}, fmt.Errorf("%w: total_span must be a positive finite number, got %g", ErrInvalidParameter, totalSpan)
	}

	o := options{palette: DefaultPalette, labels: DefaultLabels}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.palette) == 0 {
		return Set{}, fmt.Errorf("%w: sector palette is empty", ErrInvalidParameter)
	}
	if len(o.labels) == 0 {
		return Set{}, fmt.Errorf("%w: sector labels are empty", ErrInvalidParameter)
	}

	colors := make([]color.Color, len(o.palette))
	for i, hex := range o.palette {
		c, err := colorful.Hex(hex)
		if err != nil {
			return Set{}, fmt.Errorf("%w: sector colour %q: %v", ErrInvalidParameter, hex, err)
		}
		colors[i] = c
	}

	if count > len(o.palette) {
		logf("%d sectors share %d colours; styles repeat every %d sectors", count, len(o.palette), len(o.palette))
	}

	width := totalSpan / float64(count)
	sectors := make([]Sector, count)
	for i := range sectors {
		end := float64(i+1) * width
		if i == count-1 {
			end = totalSpan
		}
		sectors[i] = Sector{
			Index:    i,
			Start:    float64(i) * width,
			End:      end,
			Color:    colors[i%len(colors)],
			ColorHex: o.palette[i%len(o.palette)],
			Label:    o.labels[i%len(o.labels)],
		}
	}
	return Set{Span: totalSpan, Sectors: sectors}, nil
}

// Locate returns the sector containing angle, folding the angle into
// [0, Span) first so any electrical angle maps to a sector.
func (s Set) Locate(angle float64) (Sector, bool) {
	if len(s.Sectors) == 0 || math.IsNaN(angle) || math.IsInf(angle, 0) {
		return Sector{}, false
	}
	a := math.Mod(angle, s.Span)
	if a < 0 {
		a += s.Span
	}
	width := s.Span / float64(len(s.Sectors))
	idx := int(a / width)
	if idx >= len(s.Sectors) {
		idx = len(s.Sectors) - 1
	}
	// Guard against rounding at a boundary.
	for idx > 0 && a < s.Sectors[idx].Start {
		idx--
	}
	for idx < len(s.Sectors)-1 && a >= s.Sectors[idx].End {
		idx++
	}
	return s.Sectors[idx], true
}

// Bands returns the [start, end] pair of every sector in order.
func (s Set) Bands() [][2]float64 {
	out := make([][2]float64, len(s.Sectors))
	for i, sec := range s.Sectors {
		out[i] = [2]float64{sec.Start, sec.End}
	}
	return out
}

// Midpoints returns the label x position of every sector.
func (s Set) Midpoints() []float64 {
	out := make([]float64, len(s.Sectors))
	for i, sec := range s.Sectors {
		out[i] = sec.Mid()
	}
	return out
}
