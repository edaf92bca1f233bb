package render

import (
	"fmt"
	"image/color"
	"math"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/threephase/internal/units"
	"github.com/banshee-data/threephase/internal/waveform"
)

// Style carries every presentation choice for one figure. It is passed to
// the renderer explicitly; nothing is read from or written to plot globals.
type Style struct {
	// Figure size.
	Width  vg.Length
	Height vg.Length

	// FontVariant is a gonum/plot font variant such as "Serif" or "Sans".
	FontVariant string
	Bold        bool

	TitleFontSize       vg.Length
	AxisLabelFontSize   vg.Length
	TickLabelFontSize   vg.Length
	LegendFontSize      vg.Length
	SectorLabelFontSize vg.Length

	// Curves, indexed by waveform.Phase.
	PhaseNames  [3]string
	PhaseColors [3]color.Color
	LineWidth   vg.Length

	// TitleFormat receives the modulation index as its only argument.
	TitleFormat string

	// XUnit is units.RAD or units.DEG.
	XUnit  string
	YLabel string

	// YMax fixes the symmetric y range [-YMax, YMax]. When AutoScaleY is set
	// the range becomes Headroom·|m| instead.
	YMax       float64
	AutoScaleY bool
	Headroom   float64

	// LabelY is the y position of sector labels for the fixed range. With
	// AutoScaleY it is scaled by the same factor as the range.
	LabelY    float64
	FillAlpha float64

	GridDashes []vg.Length
	GridColor  color.Color

	// LegendTop and LegendLeft place the legend box.
	LegendTop  bool
	LegendLeft bool
}

// Presentation defaults matching the reference figure.
const (
	DefaultYMax      = 1.3
	DefaultHeadroom  = 1.3
	DefaultLabelY    = -1.10
	DefaultFillAlpha = 0.3

	// minAutoYMax keeps the auto-scaled range visible for m = 0.
	minAutoYMax = 0.1
)

// DefaultStyle returns the reference presentation: 7×4.3in, bold serif text,
// red/green/blue phases and a fixed ±1.3 p.u. range.
func DefaultStyle() Style {
	return Style{
		Width:               7 * vg.Inch,
		Height:              4.3 * vg.Inch,
		FontVariant:         "Serif",
		Bold:                true,
		TitleFontSize:       vg.Points(14),
		AxisLabelFontSize:   vg.Points(14),
		TickLabelFontSize:   vg.Points(12),
		LegendFontSize:      vg.Points(14),
		SectorLabelFontSize: vg.Points(12),
		PhaseNames:          [3]string{"Phase A Voltage", "Phase B Voltage", "Phase C Voltage"},
		PhaseColors: [3]color.Color{
			color.RGBA{R: 255, A: 255},
			color.RGBA{G: 128, A: 255},
			color.RGBA{B: 255, A: 255},
		},
		LineWidth:   vg.Points(1.5),
		TitleFormat: "Three-Phase Voltage Waveforms (Modulation Index = %g)",
		XUnit:       units.RAD,
		YLabel:      "Voltage (p.u.)",
		YMax:        DefaultYMax,
		Headroom:    DefaultHeadroom,
		LabelY:      DefaultLabelY,
		FillAlpha:   DefaultFillAlpha,
		GridDashes:  []vg.Length{vg.Points(4), vg.Points(2)},
		GridColor:   color.NRGBA{A: 77},
		LegendTop:   true,
		LegendLeft:  false,
	}
}

// Validate reports configuration mistakes as ErrInvalidParameter.
func (s Style) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: figure size must be positive, got %v×%v", waveform.ErrInvalidParameter, s.Width, s.Height)
	}
	if !units.IsValid(s.XUnit) {
		return fmt.Errorf("%w: x unit %q is not one of %s", waveform.ErrInvalidParameter, s.XUnit, units.GetValidUnitsString())
	}
	if !(s.YMax > 0) || math.IsInf(s.YMax, 0) {
		return fmt.Errorf("%w: y_max must be a positive finite number, got %g", waveform.ErrInvalidParameter, s.YMax)
	}
	if s.AutoScaleY && (!(s.Headroom > 0) || math.IsInf(s.Headroom, 0)) {
		return fmt.Errorf("%w: headroom must be a positive finite number, got %g", waveform.ErrInvalidParameter, s.Headroom)
	}
	if !(s.FillAlpha >= 0 && s.FillAlpha <= 1) {
		return fmt.Errorf("%w: fill alpha must be within [0, 1], got %g", waveform.ErrInvalidParameter, s.FillAlpha)
	}
	if s.TitleFormat == "" {
		return fmt.Errorf("%w: title format is empty", waveform.ErrInvalidParameter)
	}
	for i, c := range s.PhaseColors {
		if c == nil {
			return fmt.Errorf("%w: phase %s has no colour", waveform.ErrInvalidParameter, waveform.Phases[i])
		}
	}
	return nil
}

// YLimits returns the symmetric y range for a signal of amplitude m and the
// y position of the sector labels within it.
func (s Style) YLimits(m float64) (ymin, ymax, labelY float64) {
	ymax = s.YMax
	labelY = s.LabelY
	if s.AutoScaleY {
		ymax = math.Max(s.Headroom*math.Abs(m), minAutoYMax)
		labelY = s.LabelY * ymax / s.YMax
	}
	return -ymax, ymax, labelY
}

// Title renders the title for modulation index m.
func (s Style) Title(m float64) string {
	return fmt.Sprintf(s.TitleFormat, m)
}

// XLabel returns the x axis label for the configured unit.
func (s Style) XLabel() string {
	return units.Label(s.XUnit)
}

func (s Style) font(size vg.Length) font.Font {
	f := font.Font{Typeface: "Liberation", Variant: font.Variant(s.FontVariant), Size: size}
	if f.Variant == "" {
		f.Variant = "Sans"
	}
	if s.Bold {
		f.Weight = xfont.WeightBold
	}
	return f
}

// withAlpha returns c with its opacity replaced by alpha in [0, 1].
func withAlpha(c color.Color, alpha float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(alpha * 255))
	return n
}
