package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/banshee-data/threephase/internal/units"
	"github.com/banshee-data/threephase/internal/waveform"
)

// MaxHTMLPoints bounds the per-series payload of the HTML chart. Longer
// series are downsampled by stride; the last sample is always kept.
const MaxHTMLPoints = 2000

// WriteHTML renders spec as a standalone go-echarts page: three line series
// on a value x axis with one shaded mark area per sector.
func (r *Renderer) WriteHTML(w io.Writer, spec *FigureSpec) error {
	if spec == nil {
		return fmt.Errorf("%w: no figure", ErrInvalidState)
	}
	style := spec.Style()
	ymin, ymax, _ := style.YLimits(spec.ModulationIndex())
	angles := spec.Angles()
	xmax := units.ConvertAngle(angles[len(angles)-1], style.XUnit)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Three-Phase Voltage",
			Width:     fmt.Sprintf("%dpx", int(style.Width.Points()*1.5)),
			Height:    fmt.Sprintf("%dpx", int(style.Height.Points()*1.5)),
		}),
		charts.WithTitleOpts(opts.Title{Title: style.Title(spec.ModulationIndex())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: style.XLabel(), NameLocation: "middle", NameGap: 25, Min: 0, Max: xmax}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: style.YLabel, NameLocation: "middle", NameGap: 35, Min: ymin, Max: ymax}),
	)

	idx := strideIndices(len(angles), MaxHTMLPoints)
	for _, ph := range waveform.Phases {
		values := spec.Phase(ph)
		data := make([]opts.LineData, 0, len(idx))
		for _, i := range idx {
			x := units.ConvertAngle(angles[i], style.XUnit)
			data = append(data, opts.LineData{Value: []interface{}{x, values[i]}})
		}

		hex := colorHex(style.PhaseColors[ph])
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: hex}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: hex}),
		}
		// Sector areas hang off the first series so they are drawn once.
		if ph == waveform.PhaseA {
			seriesOpts = append(seriesOpts, sectorMarkAreas(spec, ymin, ymax)...)
		}
		line.AddSeries(style.PhaseNames[ph], data, seriesOpts...)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func sectorMarkAreas(spec *FigureSpec, ymin, ymax float64) []charts.SeriesOpts {
	style := spec.Style()
	sectors := spec.Sectors().Sectors
	items := make([]opts.MarkAreaNameCoordItem, 0, len(sectors))
	for _, sec := range sectors {
		items = append(items, opts.MarkAreaNameCoordItem{
			Name:        sec.Label,
			Coordinate0: []interface{}{units.ConvertAngle(sec.Start, style.XUnit), ymin},
			Coordinate1: []interface{}{units.ConvertAngle(sec.End, style.XUnit), ymax},
			ItemStyle:   &opts.ItemStyle{Color: rgba(sec.Color, style.FillAlpha)},
		})
	}
	return []charts.SeriesOpts{
		charts.WithMarkAreaNameCoordItemOpts(items...),
		charts.WithMarkAreaStyleOpts(opts.MarkAreaStyle{
			Label: &opts.Label{Show: opts.Bool(true), Position: "insideBottom", Color: "#000000"},
		}),
	}
}

// strideIndices picks at most limit evenly strided indices in [0, n),
// always including n-1.
func strideIndices(n, limit int) []int {
	if n <= 0 {
		return nil
	}
	stride := 1
	if limit > 0 && n > limit {
		stride = int(math.Ceil(float64(n) / float64(limit)))
	}
	idx := make([]int, 0, n/stride+2)
	for i := 0; i < n; i += stride {
		idx = append(idx, i)
	}
	if idx[len(idx)-1] != n-1 {
		idx = append(idx, n-1)
	}
	return idx
}

func colorHex(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#000000"
	}
	return cf.Hex()
}

func rgba(c color.Color, alpha float64) string {
	n := withAlpha(c, alpha)
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", n.R, n.G, n.B, alpha)
}
