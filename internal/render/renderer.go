package render

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/banshee-data/threephase/internal/fsutil"
	"github.com/banshee-data/threephase/internal/sector"
	"github.com/banshee-data/threephase/internal/waveform"
)

// Output formats. Everything except FormatHTML is drawn by gonum/plot.
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatEPS  = "eps"
	FormatJPG  = "jpg"
	FormatTIFF = "tiff"
	FormatHTML = "html"
)

// ValidFormats lists every format Render accepts.
var ValidFormats = []string{FormatPNG, FormatSVG, FormatPDF, FormatEPS, FormatJPG, FormatTIFF, FormatHTML}

// Renderer draws figures with a fixed Style.
type Renderer struct {
	Style Style
}

// NewRenderer validates style and returns a renderer using it.
func NewRenderer(style Style) (*Renderer, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{Style: style}, nil
}

// Figure snapshots the model's series and the sector set. If the model has
// not been generated yet, Generate is called first so a figure never shows
// absent data.
func (r *Renderer) Figure(model *waveform.Model, sectors sector.Set) (*FigureSpec, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: no signal model", ErrInvalidState)
	}
	series, ok := model.Series()
	if !ok {
		var err error
		if series, err = model.Generate(); err != nil {
			return nil, err
		}
	}
	return NewFigureSpec(series, sectors, model.Parameters().ModulationIndex, r.Style)
}

// Render writes spec to w in the given format.
func (r *Renderer) Render(w io.Writer, spec *FigureSpec, format string) error {
	if spec == nil {
		return fmt.Errorf("%w: no figure", ErrInvalidState)
	}
	format = NormalizeFormat(format)
	switch format {
	case FormatHTML:
		return r.WriteHTML(w, spec)
	case FormatPNG, FormatSVG, FormatPDF, FormatEPS, FormatJPG, FormatTIFF:
		return r.WriteImage(w, spec, format)
	default:
		return fmt.Errorf("%w: unsupported format %q (want one of %s)", waveform.ErrInvalidParameter, format, strings.Join(ValidFormats, ", "))
	}
}

// Save renders spec to path on fs. The format follows the file extension.
// The file is only created once the figure has been composed, and is
// removed again if writing fails.
func (r *Renderer) Save(fs fsutil.FileSystem, path string, spec *FigureSpec) error {
	format := FormatFromPath(path)
	if format == "" {
		return fmt.Errorf("%w: cannot infer format from %q", waveform.ErrInvalidParameter, path)
	}

	// Compose into memory first so a bad spec never touches the filesystem.
	var buf bytes.Buffer
	if err := r.Render(&buf, spec, format); err != nil {
		return err
	}

	if err := fsutil.WriteFile(fs, path, buf.Bytes()); err != nil {
		return err
	}
	logf("wrote %s (%d bytes)", path, buf.Len())
	return nil
}

// NormalizeFormat lower-cases a format name and folds aliases.
func NormalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	switch format {
	case "jpeg":
		return FormatJPG
	case "tif":
		return FormatTIFF
	case "htm":
		return FormatHTML
	}
	return format
}

// FormatFromPath returns the output format implied by path's extension, or
// "" when the extension is not a supported format.
func FormatFromPath(path string) string {
	format := NormalizeFormat(filepath.Ext(path))
	for _, f := range ValidFormats {
		if f == format {
			return format
		}
	}
	return ""
}
