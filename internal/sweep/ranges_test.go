package sweep

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/threephase/internal/waveform"
)

func TestParseRangeSpec(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  RangeSpec
		expectErr bool
	}{
		{"valid_range", "0.1:1.0:0.1", RangeSpec{Min: 0.1, Max: 1.0, Step: 0.1}, false},
		{"with_spaces", " 0 : 1 : 0.25 ", RangeSpec{Min: 0, Max: 1, Step: 0.25}, false},
		{"negative_values", "-30:30:15", RangeSpec{Min: -30, Max: 30, Step: 15}, false},
		{"missing_parts", "0:1", RangeSpec{}, true},
		{"too_many_parts", "0:1:0.1:2", RangeSpec{}, true},
		{"invalid_min", "abc:1:0.1", RangeSpec{}, true},
		{"invalid_max", "0:abc:0.1", RangeSpec{}, true},
		{"invalid_step", "0:1:abc", RangeSpec{}, true},
		{"zero_step", "0:1:0", RangeSpec{}, true},
		{"negative_step", "0:1:-0.1", RangeSpec{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseRangeSpec(tc.input)
			if tc.expectErr {
				if err == nil {
					t.Errorf("Expected error for input %q, got nil", tc.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if result != tc.expected {
				t.Errorf("Expected %+v, got %+v", tc.expected, result)
			}
		})
	}
}

func TestGenerateRange(t *testing.T) {
	testCases := []struct {
		name     string
		min      float64
		max      float64
		step     float64
		expected []float64
	}{
		{"modulation_steps", 0.2, 1.0, 0.2, []float64{0.2, 0.4, 0.6, 0.8, 1.0}},
		{"fractional_step", 0.0, 1.0, 0.5, []float64{0.0, 0.5, 1.0}},
		{"single_value", 0.85, 0.85, 0.1, []float64{0.85}},
		{"negative_range", -3.0, -1.0, 1.0, []float64{-3.0, -2.0, -1.0}},
		{"min_greater_than_max", 5.0, 1.0, 1.0, nil},
		{"zero_step", 1.0, 5.0, 0, nil},
		{"negative_step", 1.0, 5.0, -1.0, nil},
		{"too_many", 0, 1, 1e-6, nil},
		{"sub_millesimal_step", 0, 0.002, 0.0005, []float64{0, 0.0005, 0.001, 0.0015, 0.002}},
		{"fine_offset_min", 0.8501, 0.8503, 0.0001, []float64{0.8501, 0.8502, 0.8503}},
		{"tenths_accumulate", 0, 0.3, 0.1, []float64{0, 0.1, 0.2, 0.3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := GenerateRange(tc.min, tc.max, tc.step)
			if !reflect.DeepEqual(result, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestGenerateRange_ValuesDistinct(t *testing.T) {
	for _, step := range []float64{0.1, 0.01, 0.0025, 0.0005, 1e-4, 3e-5} {
		values := GenerateRange(0, 0.05, step)
		require.NotEmpty(t, values, "step %g", step)
		for i := 1; i < len(values); i++ {
			assert.Greater(t, values[i], values[i-1], "step %g index %d", step, i)
			assert.InDelta(t, step, values[i]-values[i-1], step*1e-6, "step %g index %d", step, i)
		}
	}
}

func TestParseParamList_FineRange(t *testing.T) {
	values, err := ParseParamList("0:0.002:0.0005")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.0005, 0.001, 0.0015, 0.002}, values)
}

func TestLinspace(t *testing.T) {
	got, err := Linspace(0, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, got)

	got, err = Linspace(0.3, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3}, got)

	for _, n := range []int{0, -1, MaxValues + 1} {
		_, err := Linspace(0, 1, n)
		assert.ErrorIs(t, err, waveform.ErrInvalidParameter)
	}
	_, err = Linspace(math.NaN(), 1, 3)
	assert.ErrorIs(t, err, waveform.ErrInvalidParameter)
}

func TestModulationAxis(t *testing.T) {
	axis := ModulationAxis()
	require.Len(t, axis, 100)
	assert.Equal(t, 0.0, axis[0])
	assert.InDelta(t, 1.01, axis[99], 1e-12)
	assert.InDelta(t, 1.01/99, axis[1], 1e-12)
}

func TestParseParamList(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  []float64
		expectErr bool
	}{
		{"empty", "", nil, false},
		{"single", "0.85", []float64{0.85}, false},
		{"csv", "0.5, 0.85,1.0", []float64{0.5, 0.85, 1.0}, false},
		{"csv_trailing_comma", "0.5,", []float64{0.5}, false},
		{"range", "0.25:0.75:0.25", []float64{0.25, 0.5, 0.75}, false},
		{"empty_range", "1:0:0.1", nil, true},
		{"bad_csv", "0.5,x", nil, true},
		{"bad_range", "0:1", nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseParamList(tc.input)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestExpandRanges(t *testing.T) {
	combos, err := ExpandRanges("0.5,1.0", "0:60:30")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{
		{0.5, 0}, {0.5, 30}, {0.5, 60},
		{1.0, 0}, {1.0, 30}, {1.0, 60},
	}, combos)

	combos, err = ExpandRanges("0.85", "")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.85, 0}}, combos)

	combos, err = ExpandRanges()
	require.NoError(t, err)
	assert.Nil(t, combos)

	_, err = ExpandRanges("0:1:0.001", "0:1:0.001")
	assert.Error(t, err)

	_, err = ExpandRanges("bad")
	assert.ErrorIs(t, err, waveform.ErrInvalidParameter)

	_, err = ExpandRanges("0:1:0.001", "0:1:0.001")
	assert.ErrorIs(t, err, waveform.ErrInvalidParameter)

	combos, err = ExpandRanges("1,2", "3", "4,5")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 3, 4}, {1, 3, 5}, {2, 3, 4}, {2, 3, 5}}, combos)
}
