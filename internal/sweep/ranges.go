// Package sweep builds the parameter axes that batch rendering iterates
// over: modulation index and phase offset lists, ranges and their
// combinations.
package sweep

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/threephase/internal/waveform"
)

// MaxValues caps every generated axis and combination list.
const MaxValues = 10000

// RangeSpec defines a floating-point parameter range for sweeping.
type RangeSpec struct {
	Min  float64
	Max  float64
	Step float64
}

// ParseRangeSpec parses a "min:max:step" string into a RangeSpec.
// Returns an error if the format is invalid or values cannot be parsed.
func ParseRangeSpec(s string) (RangeSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return RangeSpec{}, fmt.Errorf("invalid range format %q: expected min:max:step", s)
	}

	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid min value %q: %w", parts[0], err)
	}

	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid max value %q: %w", parts[1], err)
	}

	step, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid step value %q: %w", parts[2], err)
	}

	if step <= 0 {
		return RangeSpec{}, fmt.Errorf("step must be positive, got %f", step)
	}

	return RangeSpec{Min: min, Max: max, Step: step}, nil
}

// GenerateRange generates values from min to max (inclusive) stepping by
// step. Each value is rounded to the decimal precision of min and step,
// which removes accumulation noise without merging adjacent values.
// Returns nil if min > max, the step is not positive, the range would exceed
// MaxValues, or the step is too fine to keep values distinct.
func GenerateRange(min, max, step float64) []float64 {
	if !(step > 0) || math.IsInf(step, 0) || !(min <= max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil
	}

	// The tolerance keeps max inclusive when the quotient lands just short.
	steps := math.Floor((max-min)/step + 1e-9)
	if steps+1 > MaxValues {
		return nil
	}

	places := decimalPlaces(step)
	if p := decimalPlaces(min); p > places {
		places = p
	}

	result := make([]float64, 0, int(steps)+1)
	for i := 0; i <= int(steps); i++ {
		v := roundPlaces(min+float64(i)*step, places)
		if n := len(result); n > 0 && v <= result[n-1] {
			return nil
		}
		result = append(result, v)
	}
	return result
}

// maxDecimalPlaces bounds the precision GenerateRange rounds to.
const maxDecimalPlaces = 12

// decimalPlaces returns the number of fractional digits in the shortest
// decimal form of v.
func decimalPlaces(v float64) int {
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	if n := len(s) - dot - 1; n < maxDecimalPlaces {
		return n
	}
	return maxDecimalPlaces
}

func roundPlaces(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// Linspace returns n evenly spaced values over [lo, hi], both included.
func Linspace(lo, hi float64, n int) ([]float64, error) {
	switch {
	case n <= 0 || n > MaxValues:
		return nil, fmt.Errorf("%w: linspace count must be in [1, %d], got %d", waveform.ErrInvalidParameter, MaxValues, n)
	case math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0):
		return nil, fmt.Errorf("%w: linspace bounds must be finite", waveform.ErrInvalidParameter)
	case n == 1:
		return []float64{lo}, nil
	}
	return floats.Span(make([]float64, n), lo, hi), nil
}

// ModulationAxis returns the modulation index axis used for low
// common-mode region studies: 100 points over [0, 1.01].
func ModulationAxis() []float64 {
	axis, _ := Linspace(0, 1.01, 100)
	return axis
}

// ParseCSVFloat64s parses a comma-separated list of float64 values.
// Returns nil, nil for empty input strings.
func ParseCSVFloat64s(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseParamList parses a comma-separated list of floats or a range specification.
// If the string contains a colon, it is treated as "min:max:step" range spec.
// Otherwise, it is parsed as comma-separated values.
func ParseParamList(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}

	if strings.Contains(s, ":") {
		spec, err := ParseRangeSpec(s)
		if err != nil {
			return nil, err
		}
		values := GenerateRange(spec.Min, spec.Max, spec.Step)
		if len(values) == 0 {
			return nil, fmt.Errorf("range %q produces no values", s)
		}
		return values, nil
	}

	return ParseCSVFloat64s(s)
}

// ExpandRanges returns every combination of the values named by specs,
// one point per combination with one coordinate per spec. Each spec is
// parsed by ParseParamList; an empty spec contributes a single zero. The
// last spec varies fastest. Failures wrap waveform.ErrInvalidParameter.
func ExpandRanges(specs ...string) ([][]float64, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	axes := make([][]float64, len(specs))
	total := 1
	for i, spec := range specs {
		values, err := ParseParamList(spec)
		if err != nil {
			return nil, fmt.Errorf("%w: axis %d (%q): %v", waveform.ErrInvalidParameter, i, spec, err)
		}
		if len(values) == 0 {
			values = []float64{0}
		}
		axes[i] = values
		if total *= len(values); total > MaxValues {
			return nil, fmt.Errorf("%w: parameter combinations would exceed safe limit of %d", waveform.ErrInvalidParameter, MaxValues)
		}
	}

	points := make([][]float64, 0, total)
	pos := make([]int, len(axes))
	for {
		point := make([]float64, len(axes))
		for d, i := range pos {
			point[d] = axes[d][i]
		}
		points = append(points, point)

		// Advance like an odometer, last axis first.
		d := len(pos) - 1
		for ; d >= 0; d-- {
			pos[d]++
			if pos[d] < len(axes[d]) {
				break
			}
			pos[d] = 0
		}
		if d < 0 {
			return points, nil
		}
	}
}
