// Package server serves figure previews over HTTP. Every request renders a
// fresh figure from the base configuration with query overrides applied.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/banshee-data/threephase/internal/config"
	"github.com/banshee-data/threephase/internal/export"
	"github.com/banshee-data/threephase/internal/httputil"
	"github.com/banshee-data/threephase/internal/monitoring"
	"github.com/banshee-data/threephase/internal/render"
	"github.com/banshee-data/threephase/internal/units"
	"github.com/banshee-data/threephase/internal/version"
	"github.com/banshee-data/threephase/internal/waveform"
)

var logf = monitoring.Component("server")

var contentTypes = map[string]string{
	render.FormatPNG:  "image/png",
	render.FormatSVG:  "image/svg+xml",
	render.FormatHTML: "text/html; charset=utf-8",
}

// Config holds the server options.
type Config struct {
	Address string
	Base    *config.WaveformConfig
}

// Server renders previews for a base waveform configuration.
type Server struct {
	address string
	base    *config.WaveformConfig
	server  *http.Server
}

// NewServer creates a server. A nil Base falls back to the defaults.
func NewServer(cfg Config) *Server {
	base := cfg.Base
	if base == nil {
		base = config.DefaultWaveformConfig()
	}
	s := &Server{address: cfg.Address, base: base}
	s.server = &http.Server{
		Addr:              s.address,
		Handler:           LoggingMiddleware(s.ServeMux()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logf("listening on %s", s.address)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logf("shutdown error: %v", err)
		if err := s.server.Close(); err != nil {
			logf("force close error: %v", err)
		}
	}
	logf("stopped")
	return nil
}

// ServeMux wires the preview routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /figure.png", s.figureHandler(render.FormatPNG))
	mux.HandleFunc("GET /figure.svg", s.figureHandler(render.FormatSVG))
	mux.HandleFunc("GET /figure.html", s.figureHandler(render.FormatHTML))
	mux.HandleFunc("GET /series.csv", s.handleSeries)
	mux.HandleFunc("GET /sectors.json", s.handleSectors)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		target := "/figure.html"
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusFound)
	})
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func (s *Server) figureHandler(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := applyQuery(s.base, r.URL.Query())
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		spec, renderer, err := buildFigure(cfg)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		var buf bytes.Buffer
		if err := renderer.Render(&buf, spec, format); err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteBody(w, contentTypes[format], buf.Bytes())
	}
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	cfg, err := applyQuery(s.base, r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	model, err := waveform.NewModel(cfg.Parameters())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	series, err := model.Generate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sectors, err := cfg.Sectors()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var buf bytes.Buffer
	if _, err := export.NewCSVWriter(&buf).WriteSeries(series, sectors); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="series.csv"`)
	httputil.WriteBody(w, "text/csv", buf.Bytes())
}

type sectorJSON struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Color string  `json:"color"`
	Label string  `json:"label"`
}

func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	cfg, err := applyQuery(s.base, r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	set, err := cfg.Sectors()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]sectorJSON, 0, set.Len())
	for _, sec := range set.Sectors {
		out = append(out, sectorJSON{
			Index: sec.Index,
			Start: sec.Start,
			End:   sec.End,
			Color: sec.ColorHex,
			Label: sec.Label,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"span":    set.Span,
		"sectors": out,
	})
}

func buildFigure(cfg *config.WaveformConfig) (*render.FigureSpec, *render.Renderer, error) {
	model, err := waveform.NewModel(cfg.Parameters())
	if err != nil {
		return nil, nil, err
	}
	sectors, err := cfg.Sectors()
	if err != nil {
		return nil, nil, err
	}
	renderer, err := render.NewRenderer(cfg.Style())
	if err != nil {
		return nil, nil, err
	}
	spec, err := renderer.Figure(model, sectors)
	if err != nil {
		return nil, nil, err
	}
	return spec, renderer, nil
}

// applyQuery copies base and overrides the fields named in q. The base
// config is never modified.
func applyQuery(base *config.WaveformConfig, q url.Values) (*config.WaveformConfig, error) {
	cfg := *base
	if v := q.Get("m"); v != "" {
		f, err := parseFloat("m", v)
		if err != nil {
			return nil, err
		}
		cfg.ModulationIndex = &f
	}
	if v := q.Get("offset_deg"); v != "" {
		f, err := parseFloat("offset_deg", v)
		if err != nil {
			return nil, err
		}
		cfg.PhaseOffsetDeg = &f
	}
	if v := q.Get("sectors"); v != "" {
		n, err := parseInt("sectors", v)
		if err != nil {
			return nil, err
		}
		cfg.SectorCount = &n
	}
	if v := q.Get("periods"); v != "" {
		n, err := parseInt("periods", v)
		if err != nil {
			return nil, err
		}
		cfg.SectorPeriods = &n
	}
	if v := q.Get("unit"); v != "" {
		if !units.IsValid(v) {
			return nil, fmt.Errorf("%w: unit must be one of %s, got %q", waveform.ErrInvalidParameter, units.GetValidUnitsString(), v)
		}
		cfg.XUnit = &v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseFloat(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a number", waveform.ErrInvalidParameter, name, v)
	}
	return f, nil
}

func parseInt(name, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not an integer", waveform.ErrInvalidParameter, name, v)
	}
	return n, nil
}
