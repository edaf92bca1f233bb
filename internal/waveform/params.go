package waveform

import (
	"fmt"
	"math"
)

// SignalParameters describes the sinusoids to synthesise.
type SignalParameters struct {
	// ModulationIndex scales the amplitude of every phase. Conventionally in
	// [0, 1] but not enforced; overmodulated values are drawn as given.
	ModulationIndex float64
	// PhaseOffset shifts all three phases, in radians.
	PhaseOffset float64
	// Frequency is the fundamental frequency in Hz.
	Frequency float64
	// SampleCount is the number of instants in the time base.
	SampleCount int
	// TimeSpan is the duration covered by the time base, in seconds.
	TimeSpan float64
}

// Defaults for the reference figure: 0.85 modulation index, 30° offset and
// two 50 Hz periods sampled 10000 times.
const (
	DefaultModulationIndex = 0.85
	DefaultPhaseOffset     = math.Pi / 6
	DefaultFrequency       = 50.0
	DefaultSampleCount     = 10000
	DefaultTimeSpan        = 0.04
)

// DefaultParameters returns the reference parameter set.
func DefaultParameters() SignalParameters {
	return SignalParameters{
		ModulationIndex: DefaultModulationIndex,
		PhaseOffset:     DefaultPhaseOffset,
		Frequency:       DefaultFrequency,
		SampleCount:     DefaultSampleCount,
		TimeSpan:        DefaultTimeSpan,
	}
}

// Validate checks the structural preconditions of the parameters.
func (p SignalParameters) Validate() error {
	if p.SampleCount <= 0 {
		return fmt.Errorf("%w: sample_count must be positive, got %d", ErrInvalidParameter, p.SampleCount)
	}
	if !(p.TimeSpan > 0) || math.IsInf(p.TimeSpan, 0) {
		return fmt.Errorf("%w: time_span must be a positive finite number, got %g", ErrInvalidParameter, p.TimeSpan)
	}
	if !(p.Frequency > 0) || math.IsInf(p.Frequency, 0) {
		return fmt.Errorf("%w: frequency must be a positive finite number, got %g", ErrInvalidParameter, p.Frequency)
	}
	if math.IsNaN(p.ModulationIndex) || math.IsInf(p.ModulationIndex, 0) {
		return fmt.Errorf("%w: modulation_index must be finite, got %g", ErrInvalidParameter, p.ModulationIndex)
	}
	if math.IsNaN(p.PhaseOffset) || math.IsInf(p.PhaseOffset, 0) {
		return fmt.Errorf("%w: phase_offset must be finite, got %g", ErrInvalidParameter, p.PhaseOffset)
	}
	return nil
}

// Periods returns how many fundamental periods the time base covers.
func (p SignalParameters) Periods() float64 {
	return p.TimeSpan * p.Frequency
}
