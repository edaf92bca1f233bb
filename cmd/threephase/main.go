// Command threephase renders three-phase voltage waveform figures with
// sector overlays, optionally sweeping the modulation index and phase
// offset, or serves live previews over HTTP.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/banshee-data/threephase/internal/config"
	"github.com/banshee-data/threephase/internal/export"
	"github.com/banshee-data/threephase/internal/fsutil"
	"github.com/banshee-data/threephase/internal/render"
	"github.com/banshee-data/threephase/internal/server"
	"github.com/banshee-data/threephase/internal/sweep"
	"github.com/banshee-data/threephase/internal/units"
	"github.com/banshee-data/threephase/internal/version"
	"github.com/banshee-data/threephase/internal/waveform"
)

// axisKeyword selects the full modulation axis for -m.
const axisKeyword = "axis"

var (
	configPath  = flag.String("config", "", "Path to a waveform JSON config (defaults apply when empty)")
	mList       = flag.String("m", "", "Modulation index: value, comma list, min:max:step, or 'axis' (default from config, 0.85)")
	offsetList  = flag.String("offset", "", "Phase offset in degrees: value, comma list or min:max:step (default from config, 30)")
	outDir      = flag.String("out", "out", "Output directory")
	format      = flag.String("format", render.FormatPNG, "Image format: "+strings.Join(render.ValidFormats, ", "))
	writeHTML   = flag.Bool("html", false, "Also write an interactive HTML figure")
	writeCSV    = flag.Bool("csv", false, "Also write the sampled series as CSV")
	listen      = flag.String("listen", "", "Serve previews on this address instead of writing files (e.g. :8080)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// options is the parsed command line, separate from the flag globals so
// run can be driven from tests.
type options struct {
	MList  string
	Offset string
	OutDir string
	Format string
	HTML   bool
	CSV    bool
}

// job is one point of the sweep.
type job struct {
	M         float64
	OffsetDeg float64
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg := config.DefaultWaveformConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadWaveformConfig(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	if *listen != "" {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		srv := server.NewServer(server.Config{Address: *listen, Base: cfg})
		if err := srv.Start(ctx); err != nil {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	opts := options{
		MList:  *mList,
		Offset: *offsetList,
		OutDir: *outDir,
		Format: *format,
		HTML:   *writeHTML,
		CSV:    *writeCSV,
	}
	written, err := run(cfg, opts, fsutil.OSFileSystem{})
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("wrote %d file(s) to %s", len(written), opts.OutDir)
}

// run expands the sweep and writes every requested output for each point.
// It returns the paths written.
func run(cfg *config.WaveformConfig, opts options, fs fsutil.FileSystem) ([]string, error) {
	format := render.NormalizeFormat(opts.Format)
	if format == render.FormatHTML || render.FormatFromPath("x."+format) == "" {
		return nil, fmt.Errorf("%w: -format must be an image format, got %q", waveform.ErrInvalidParameter, opts.Format)
	}

	jobs, err := expandJobs(cfg, opts.MList, opts.Offset)
	if err != nil {
		return nil, err
	}

	sectors, err := cfg.Sectors()
	if err != nil {
		return nil, fmt.Errorf("failed to partition sectors: %w", err)
	}
	renderer, err := render.NewRenderer(cfg.Style())
	if err != nil {
		return nil, fmt.Errorf("invalid style: %w", err)
	}

	var written []string
	for _, j := range jobs {
		params := cfg.Parameters()
		params.ModulationIndex = j.M
		params.PhaseOffset = units.ToRadians(j.OffsetDeg, units.DEG)

		model, err := waveform.NewModel(params)
		if err != nil {
			return written, fmt.Errorf("m=%g offset=%g: %w", j.M, j.OffsetDeg, err)
		}
		spec, err := renderer.Figure(model, sectors)
		if err != nil {
			return written, fmt.Errorf("m=%g offset=%g: %w", j.M, j.OffsetDeg, err)
		}

		base := filepath.Join(opts.OutDir, baseName(j))
		outputs := []string{base + "." + format}
		if opts.HTML {
			outputs = append(outputs, base+"."+render.FormatHTML)
		}
		for _, path := range outputs {
			if err := renderer.Save(fs, path, spec); err != nil {
				return written, err
			}
			written = append(written, path)
		}

		if opts.CSV {
			path := base + ".csv"
			if err := saveCSV(fs, path, model, spec); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	return written, nil
}

// expandJobs builds the sweep points. Empty lists fall back to the config
// values so a plain invocation renders exactly one figure.
func expandJobs(cfg *config.WaveformConfig, mSpec, offsetSpec string) ([]job, error) {
	if mSpec == "" {
		mSpec = strconv.FormatFloat(cfg.GetModulationIndex(), 'g', -1, 64)
	}
	if offsetSpec == "" {
		offsetSpec = strconv.FormatFloat(cfg.GetPhaseOffsetDeg(), 'g', -1, 64)
	}

	if strings.EqualFold(strings.TrimSpace(mSpec), axisKeyword) {
		axis := sweep.ModulationAxis()
		parts := make([]string, len(axis))
		for i, m := range axis {
			parts[i] = strconv.FormatFloat(m, 'g', -1, 64)
		}
		mSpec = strings.Join(parts, ",")
	}

	points, err := sweep.ExpandRanges(mSpec, offsetSpec)
	if err != nil {
		return nil, fmt.Errorf("-m/-offset: %w", err)
	}

	// Output names derive from the point, so repeated points would
	// overwrite each other.
	jobs := make([]job, 0, len(points))
	seen := make(map[string]bool, len(points))
	for _, pt := range points {
		j := job{M: pt[0], OffsetDeg: pt[1]}
		name := baseName(j)
		if seen[name] {
			return nil, fmt.Errorf("%w: sweep repeats m=%g offset=%g", waveform.ErrInvalidParameter, j.M, j.OffsetDeg)
		}
		seen[name] = true
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func baseName(j job) string {
	return fmt.Sprintf("waveform_m%s_offset%s",
		strconv.FormatFloat(j.M, 'f', -1, 64),
		strconv.FormatFloat(j.OffsetDeg, 'f', -1, 64))
}

func saveCSV(fs fsutil.FileSystem, path string, model *waveform.Model, spec *render.FigureSpec) error {
	series, ok := model.Series()
	if !ok {
		return fmt.Errorf("%w: series not generated", waveform.ErrInvalidState)
	}
	var buf bytes.Buffer
	if _, err := export.NewCSVWriter(&buf).WriteSeries(series, spec.Sectors()); err != nil {
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	return fsutil.WriteFile(fs, path, buf.Bytes())
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}
