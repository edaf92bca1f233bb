package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/threephase/internal/render"
	"github.com/banshee-data/threephase/internal/sector"
	"github.com/banshee-data/threephase/internal/sweep"
	"github.com/banshee-data/threephase/internal/units"
	"github.com/banshee-data/threephase/internal/waveform"
)

// DefaultConfigPath is the path to the canonical waveform defaults file.
const DefaultConfigPath = "config/waveform.defaults.json"

// Upper bounds for the sector fields. Every sector costs a polygon and a
// label per render, and the preview server accepts these from queries.
const (
	MaxSectorCount   = sweep.MaxValues
	MaxSectorPeriods = 1000
)

// WaveformConfig is the root configuration for one figure. Every field is
// optional; the Get* methods supply defaults for fields left unset, so a
// partial JSON file is safe.
type WaveformConfig struct {
	// Signal params
	ModulationIndex *float64 `json:"modulation_index,omitempty"`
	PhaseOffsetDeg  *float64 `json:"phase_offset_deg,omitempty"`
	FrequencyHz     *float64 `json:"frequency_hz,omitempty"`
	SampleCount     *int     `json:"sample_count,omitempty"`
	TimeSpan        *string  `json:"time_span,omitempty"` // duration string like "40ms"

	// Sector params
	SectorCount   *int     `json:"sector_count,omitempty"`
	SectorPeriods *int     `json:"sector_periods,omitempty"`
	SectorPalette []string `json:"sector_palette,omitempty"`
	SectorLabels  []string `json:"sector_labels,omitempty"`

	// Style params
	YMax       *float64 `json:"y_max,omitempty"`
	AutoScaleY *bool    `json:"auto_scale_y,omitempty"`
	XUnit      *string  `json:"x_unit,omitempty"`
	WidthIn    *float64 `json:"width_in,omitempty"`
	HeightIn   *float64 `json:"height_in,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyWaveformConfig returns a WaveformConfig with all fields set to nil.
func EmptyWaveformConfig() *WaveformConfig {
	return &WaveformConfig{}
}

// DefaultWaveformConfig returns a config with every field set to its default.
func DefaultWaveformConfig() *WaveformConfig {
	return &WaveformConfig{
		ModulationIndex: ptrFloat64(waveform.DefaultModulationIndex),
		PhaseOffsetDeg:  ptrFloat64(30),
		FrequencyHz:     ptrFloat64(waveform.DefaultFrequency),
		SampleCount:     ptrInt(waveform.DefaultSampleCount),
		TimeSpan:        ptrString("40ms"),
		SectorCount:     ptrInt(sector.DefaultCount),
		SectorPeriods:   ptrInt(sector.DefaultPeriods),
		SectorPalette:   append([]string(nil), sector.DefaultPalette...),
		SectorLabels:    append([]string(nil), sector.DefaultLabels...),
		YMax:            ptrFloat64(render.DefaultYMax),
		AutoScaleY:      ptrBool(false),
		XUnit:           ptrString(units.RAD),
		WidthIn:         ptrFloat64(7),
		HeightIn:        ptrFloat64(4.3),
	}
}

// LoadWaveformConfig loads a WaveformConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadWaveformConfig(path string) (*WaveformConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyWaveformConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid. Structural
// failures wrap waveform.ErrInvalidParameter.
func (c *WaveformConfig) Validate() error {
	if c.SampleCount != nil && *c.SampleCount <= 0 {
		return fmt.Errorf("%w: sample_count must be positive, got %d", waveform.ErrInvalidParameter, *c.SampleCount)
	}
	if c.FrequencyHz != nil && !(*c.FrequencyHz > 0) {
		return fmt.Errorf("%w: frequency_hz must be positive, got %f", waveform.ErrInvalidParameter, *c.FrequencyHz)
	}
	if c.TimeSpan != nil && *c.TimeSpan != "" {
		d, err := time.ParseDuration(*c.TimeSpan)
		if err != nil {
			return fmt.Errorf("invalid time_span '%s': %w", *c.TimeSpan, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: time_span must be positive, got %s", waveform.ErrInvalidParameter, d)
		}
	}
	if c.SectorCount != nil && (*c.SectorCount <= 0 || *c.SectorCount > MaxSectorCount) {
		return fmt.Errorf("%w: sector_count must be in [1, %d], got %d", waveform.ErrInvalidParameter, MaxSectorCount, *c.SectorCount)
	}
	if c.SectorPeriods != nil && (*c.SectorPeriods <= 0 || *c.SectorPeriods > MaxSectorPeriods) {
		return fmt.Errorf("%w: sector_periods must be in [1, %d], got %d", waveform.ErrInvalidParameter, MaxSectorPeriods, *c.SectorPeriods)
	}
	if c.YMax != nil && !(*c.YMax > 0) {
		return fmt.Errorf("%w: y_max must be positive, got %f", waveform.ErrInvalidParameter, *c.YMax)
	}
	if c.XUnit != nil && !units.IsValid(*c.XUnit) {
		return fmt.Errorf("%w: x_unit must be one of %s, got %q", waveform.ErrInvalidParameter, units.GetValidUnitsString(), *c.XUnit)
	}
	if c.WidthIn != nil && !(*c.WidthIn > 0) {
		return fmt.Errorf("%w: width_in must be positive, got %f", waveform.ErrInvalidParameter, *c.WidthIn)
	}
	if c.HeightIn != nil && !(*c.HeightIn > 0) {
		return fmt.Errorf("%w: height_in must be positive, got %f", waveform.ErrInvalidParameter, *c.HeightIn)
	}
	return nil
}

// GetModulationIndex returns the modulation_index value or the default.
func (c *WaveformConfig) GetModulationIndex() float64 {
	if c.ModulationIndex == nil {
		return waveform.DefaultModulationIndex
	}
	return *c.ModulationIndex
}

// GetPhaseOffsetDeg returns the phase_offset_deg value or the default.
func (c *WaveformConfig) GetPhaseOffsetDeg() float64 {
	if c.PhaseOffsetDeg == nil {
		return 30
	}
	return *c.PhaseOffsetDeg
}

// GetFrequencyHz returns the frequency_hz value or the default.
func (c *WaveformConfig) GetFrequencyHz() float64 {
	if c.FrequencyHz == nil {
		return waveform.DefaultFrequency
	}
	return *c.FrequencyHz
}

// GetSampleCount returns the sample_count value or the default.
func (c *WaveformConfig) GetSampleCount() int {
	if c.SampleCount == nil {
		return waveform.DefaultSampleCount
	}
	return *c.SampleCount
}

// GetTimeSpan parses and returns the TimeSpan as a time.Duration.
func (c *WaveformConfig) GetTimeSpan() time.Duration {
	if c.TimeSpan == nil || *c.TimeSpan == "" {
		return 40 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.TimeSpan)
	if err != nil {
		return 40 * time.Millisecond // default on parse error
	}
	return d
}

// GetSectorCount returns the sector_count value or the default.
func (c *WaveformConfig) GetSectorCount() int {
	if c.SectorCount == nil {
		return sector.DefaultCount
	}
	return *c.SectorCount
}

// GetSectorPeriods returns the sector_periods value or the default.
func (c *WaveformConfig) GetSectorPeriods() int {
	if c.SectorPeriods == nil {
		return sector.DefaultPeriods
	}
	return *c.SectorPeriods
}

// GetYMax returns the y_max value or the default.
func (c *WaveformConfig) GetYMax() float64 {
	if c.YMax == nil {
		return render.DefaultYMax
	}
	return *c.YMax
}

// GetAutoScaleY returns the auto_scale_y value or the default.
func (c *WaveformConfig) GetAutoScaleY() bool {
	if c.AutoScaleY == nil {
		return false
	}
	return *c.AutoScaleY
}

// GetXUnit returns the x_unit value or the default.
func (c *WaveformConfig) GetXUnit() string {
	if c.XUnit == nil {
		return units.RAD
	}
	return *c.XUnit
}

// Parameters converts the signal fields to waveform parameters.
func (c *WaveformConfig) Parameters() waveform.SignalParameters {
	return waveform.SignalParameters{
		ModulationIndex: c.GetModulationIndex(),
		PhaseOffset:     units.ToRadians(c.GetPhaseOffsetDeg(), units.DEG),
		Frequency:       c.GetFrequencyHz(),
		SampleCount:     c.GetSampleCount(),
		TimeSpan:        c.GetTimeSpan().Seconds(),
	}
}

// SectorSpan returns the angular span covered by the sectors.
func (c *WaveformConfig) SectorSpan() float64 {
	return sector.SpanForPeriods(c.GetSectorPeriods())
}

// Sectors partitions the configured span with the configured palette.
func (c *WaveformConfig) Sectors() (sector.Set, error) {
	var opts []sector.Option
	if len(c.SectorPalette) > 0 {
		opts = append(opts, sector.WithPalette(c.SectorPalette))
	}
	if len(c.SectorLabels) > 0 {
		opts = append(opts, sector.WithLabels(c.SectorLabels))
	}
	return sector.Partition(c.SectorSpan(), c.GetSectorCount(), opts...)
}

// Style applies the style fields on top of render.DefaultStyle.
func (c *WaveformConfig) Style() render.Style {
	s := render.DefaultStyle()
	s.YMax = c.GetYMax()
	s.AutoScaleY = c.GetAutoScaleY()
	s.XUnit = c.GetXUnit()
	if c.WidthIn != nil {
		s.Width = vg.Length(*c.WidthIn) * vg.Inch
	}
	if c.HeightIn != nil {
		s.Height = vg.Length(*c.HeightIn) * vg.Inch
	}
	// Keep labels in the same relative position when the range changes.
	s.LabelY = render.DefaultLabelY * s.YMax / render.DefaultYMax
	return s
}
