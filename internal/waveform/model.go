// Package waveform synthesises the three phase voltage sequences of a PWM
// modulator in closed form: v_k(θ) = m·sin(θ + shift_k + offset).
package waveform

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/threephase/internal/units"
)

// Phase identifies one of the three phase legs.
type Phase int

const (
	PhaseA Phase = iota
	PhaseB
	PhaseC
)

// Phases lists the phases in plotting order.
var Phases = [3]Phase{PhaseA, PhaseB, PhaseC}

// TwoPiOverThree is the spacing between adjacent phases.
const TwoPiOverThree = 2 * math.Pi / 3

// Shift returns the fixed angular displacement of the phase relative to A.
func (p Phase) Shift() float64 {
	switch p {
	case PhaseB:
		return -TwoPiOverThree
	case PhaseC:
		return TwoPiOverThree
	default:
		return 0
	}
}

func (p Phase) String() string {
	switch p {
	case PhaseA:
		return "A"
	case PhaseB:
		return "B"
	case PhaseC:
		return "C"
	default:
		return "?"
	}
}

// Result holds one generated set of series. Angles is the shared x-axis and
// Phases is indexed by Phase.
type Result struct {
	Angles []float64
	Phases [3][]float64
}

// Len returns the number of samples.
func (r Result) Len() int { return len(r.Angles) }

// Model produces the phase series for one parameter set. The time base and
// angle axis are computed on first use and cached; they never change after
// construction because the parameters are fixed.
type Model struct {
	params SignalParameters

	time    []float64
	angles  []float64
	degrees []float64

	// computed is set once Generate has succeeded; series holds its output.
	computed bool
	series   Result
}

// NewModel validates params and returns a model for them.
func NewModel(params SignalParameters) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Model{params: params}, nil
}

// Parameters returns the parameter set the model was built with.
func (m *Model) Parameters() SignalParameters { return m.params }

// Time returns the uniformly spaced time base over [0, TimeSpan]. The
// returned slice is shared with the model and must not be modified.
func (m *Model) Time() []float64 {
	if m.time == nil {
		n := m.params.SampleCount
		t := make([]float64, n)
		if n > 1 {
			floats.Span(t, 0, m.params.TimeSpan)
		}
		m.time = t
	}
	return m.time
}

// Angles returns the time base scaled to electrical angle in radians. The
// returned slice is shared with the model and must not be modified.
func (m *Model) Angles() []float64 {
	if m.angles == nil {
		a := append([]float64(nil), m.Time()...)
		floats.Scale(units.AngularFrequency(m.params.Frequency), a)
		m.angles = a
	}
	return m.angles
}

// Degrees returns the angle axis in degrees. Shared, read-only.
func (m *Model) Degrees() []float64 {
	if m.degrees == nil {
		d := append([]float64(nil), m.Angles()...)
		floats.Scale(180/math.Pi, d)
		m.degrees = d
	}
	return m.degrees
}

// Eval returns the voltage of phase p at an arbitrary angle.
func (m *Model) Eval(p Phase, angle float64) float64 {
	return m.params.ModulationIndex * math.Sin(angle+p.Shift()+m.params.PhaseOffset)
}

// Generate computes the three phase series. It is deterministic: repeated
// calls return identical values. The returned slices are copies owned by
// the caller.
func (m *Model) Generate() (Result, error) {
	if err := m.params.Validate(); err != nil {
		return Result{}, err
	}
	angles := m.Angles()

	var res Result
	res.Angles = append([]float64(nil), angles...)
	for _, p := range Phases {
		v := make([]float64, len(angles))
		shift := p.Shift() + m.params.PhaseOffset
		for i, theta := range angles {
			v[i] = math.Sin(theta + shift)
		}
		floats.Scale(m.params.ModulationIndex, v)
		res.Phases[p] = v
	}

	m.series = res
	m.computed = true
	return res.clone(), nil
}

// Computed reports whether Generate has produced series for this model.
func (m *Model) Computed() bool { return m.computed }

// Series returns the series from the last Generate call. The boolean is
// false when nothing has been generated yet.
func (m *Model) Series() (Result, bool) {
	if !m.computed {
		return Result{}, false
	}
	return m.series.clone(), true
}

func (r Result) clone() Result {
	out := Result{Angles: append([]float64(nil), r.Angles...)}
	for i := range r.Phases {
		out.Phases[i] = append([]float64(nil), r.Phases[i]...)
	}
	return out
}
