package render

import (
	"bytes"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/banshee-data/threephase/internal/units"
	"github.com/banshee-data/threephase/internal/waveform"
)

// figureLayers holds the plotters of one figure.
type figureLayers struct {
	curves []*plotter.Line
	bands  []*plotter.Polygon
	labels *plotter.Labels
	grid   *plotter.Grid
}

// ordered returns the layers in drawing order: curves, sector bands,
// sector labels, grid.
func (l figureLayers) ordered() []plot.Plotter {
	out := make([]plot.Plotter, 0, len(l.curves)+len(l.bands)+2)
	for _, c := range l.curves {
		out = append(out, c)
	}
	for _, b := range l.bands {
		out = append(out, b)
	}
	return append(out, l.labels, l.grid)
}

// buildLayers converts spec into plotters in the configured x unit.
func buildLayers(spec *FigureSpec) (figureLayers, error) {
	style := spec.Style()
	var layers figureLayers

	x := make([]float64, spec.Len())
	for i, a := range spec.Angles() {
		x[i] = units.ConvertAngle(a, style.XUnit)
	}

	for _, ph := range waveform.Phases {
		line, err := plotter.NewLine(xyPairs(x, spec.Phase(ph)))
		if err != nil {
			return layers, fmt.Errorf("phase %s: %w", ph, err)
		}
		line.Color = style.PhaseColors[ph]
		line.Width = style.LineWidth
		layers.curves = append(layers.curves, line)
	}

	ymin, ymax, labelY := style.YLimits(spec.ModulationIndex())

	sectors := spec.Sectors().Sectors
	labelPts := make(plotter.XYs, 0, len(sectors))
	labelText := make([]string, 0, len(sectors))
	for _, sec := range sectors {
		x0 := units.ConvertAngle(sec.Start, style.XUnit)
		x1 := units.ConvertAngle(sec.End, style.XUnit)
		band, err := plotter.NewPolygon(plotter.XYs{
			{X: x0, Y: ymin},
			{X: x1, Y: ymin},
			{X: x1, Y: ymax},
			{X: x0, Y: ymax},
		})
		if err != nil {
			return layers, fmt.Errorf("sector %d: %w", sec.Index, err)
		}
		band.Color = withAlpha(sec.Color, style.FillAlpha)
		band.LineStyle.Width = 0
		layers.bands = append(layers.bands, band)

		labelPts = append(labelPts, plotter.XY{X: 0.5 * (x0 + x1), Y: labelY})
		labelText = append(labelText, sec.Label)
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: labelPts, Labels: labelText})
	if err != nil {
		return layers, fmt.Errorf("sector labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font = style.font(style.SectorLabelFontSize)
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	layers.labels = labels

	grid := plotter.NewGrid()
	grid.Vertical.Dashes = style.GridDashes
	grid.Horizontal.Dashes = style.GridDashes
	if style.GridColor != nil {
		grid.Vertical.Color = style.GridColor
		grid.Horizontal.Color = style.GridColor
	}
	layers.grid = grid

	return layers, nil
}

// Plot composes spec into a gonum plot. Bands are alpha blended so the
// curves under them stay visible.
func (r *Renderer) Plot(spec *FigureSpec) (*plot.Plot, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: no figure", ErrInvalidState)
	}
	style := spec.Style()

	layers, err := buildLayers(spec)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	applyTextStyle(p, style)
	p.Title.Text = style.Title(spec.ModulationIndex())
	p.X.Label.Text = style.XLabel()
	p.Y.Label.Text = style.YLabel

	p.Add(layers.ordered()...)
	for i, line := range layers.curves {
		p.Legend.Add(style.PhaseNames[waveform.Phases[i]], line)
	}

	// Limits are assigned after Add, which widens the axes to the data.
	ymin, ymax, _ := style.YLimits(spec.ModulationIndex())
	angles := spec.Angles()
	p.X.Min = 0
	p.X.Max = units.ConvertAngle(angles[len(angles)-1], style.XUnit)
	p.Y.Min = ymin
	p.Y.Max = ymax

	p.Legend.Top = style.LegendTop
	p.Legend.Left = style.LegendLeft
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

// WriteImage draws spec with gonum/plot and writes it to w.
func (r *Renderer) WriteImage(w io.Writer, spec *FigureSpec, format string) error {
	if spec == nil {
		return fmt.Errorf("%w: no figure", ErrInvalidState)
	}
	if format == FormatPDF {
		return r.writePDF(w, spec)
	}

	p, err := r.Plot(spec)
	if err != nil {
		return err
	}
	style := spec.Style()
	wt, err := p.WriterTo(style.Width, style.Height, format)
	if err != nil {
		return fmt.Errorf("%s writer: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}

// writePDF draws through vgpdf with the fonts embedded. If the bold faces
// still cannot be resolved the figure is redrawn at regular weight rather
// than failing the export.
func (r *Renderer) writePDF(w io.Writer, spec *FigureSpec) error {
	var buf bytes.Buffer
	err := r.drawPDF(&buf, spec)
	if err != nil && spec.style.Bold {
		logf("pdf with bold text failed (%v); using regular weight", err)
		plain := *spec
		plain.style.Bold = false
		buf.Reset()
		err = r.drawPDF(&buf, &plain)
	}
	if err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (r *Renderer) drawPDF(w io.Writer, spec *FigureSpec) error {
	p, err := r.Plot(spec)
	if err != nil {
		return err
	}
	style := spec.Style()
	c := vgpdf.New(style.Width, style.Height)
	c.EmbedFonts(true)
	p.Draw(draw.New(c))
	_, err = c.WriteTo(w)
	return err
}

func applyTextStyle(p *plot.Plot, style Style) {
	p.Title.TextStyle.Font = style.font(style.TitleFontSize)
	p.X.Label.TextStyle.Font = style.font(style.AxisLabelFontSize)
	p.Y.Label.TextStyle.Font = style.font(style.AxisLabelFontSize)
	p.X.Tick.Label.Font = style.font(style.TickLabelFontSize)
	p.Y.Tick.Label.Font = style.font(style.TickLabelFontSize)
	p.Legend.TextStyle.Font = style.font(style.LegendFontSize)
}

func xyPairs(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return pts
}
