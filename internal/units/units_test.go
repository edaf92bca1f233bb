package units

import (
	"math"
	"testing"
)

func TestConvertAngle(t *testing.T) {
	tests := []struct {
		name     string
		angle    float64
		units    string
		expected float64
	}{
		{"pi to deg", math.Pi, DEG, 180},
		{"pi/6 to deg", math.Pi / 6, DEG, 30},
		{"4pi to deg", 4 * math.Pi, DEG, 720},
		{"pi to rad", math.Pi, RAD, math.Pi},
		{"unknown units default to rad", 1.5, "grad", 1.5},
		{"negative angle", -math.Pi / 2, DEG, -90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertAngle(tt.angle, tt.units)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ConvertAngle(%f, %s) = %f, want %f", tt.angle, tt.units, result, tt.expected)
			}
		})
	}
}

func TestToRadiansRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 30, 90, 120, 360, 720} {
		rad := ToRadians(deg, DEG)
		if got := ConvertAngle(rad, DEG); math.Abs(got-deg) > 1e-9 {
			t.Errorf("round trip of %f deg = %f", deg, got)
		}
	}
	if got := ToRadians(2.0, RAD); got != 2.0 {
		t.Errorf("ToRadians(2, rad) = %f, want 2", got)
	}
}

func TestTimeToAngle(t *testing.T) {
	// Two periods of 50 Hz span 4π rad.
	got := TimeToAngle(0.04, 50)
	if math.Abs(got-4*math.Pi) > 1e-12 {
		t.Errorf("TimeToAngle(0.04, 50) = %f, want %f", got, 4*math.Pi)
	}
	if back := AngleToTime(got, 50); math.Abs(back-0.04) > 1e-15 {
		t.Errorf("AngleToTime = %f, want 0.04", back)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"rad", RAD, true},
		{"deg", DEG, true},
		{"empty", "", false},
		{"upper case", "DEG", false},
		{"turns", "turn", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.unit); got != tt.expected {
				t.Errorf("IsValid(%q) = %v, want %v", tt.unit, got, tt.expected)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	if Label(DEG) != "Angle (deg)" {
		t.Errorf("Label(deg) = %q", Label(DEG))
	}
	if Label(RAD) != "Angle (rad)" {
		t.Errorf("Label(rad) = %q", Label(RAD))
	}
	if GetValidUnitsString() != "rad, deg" {
		t.Errorf("GetValidUnitsString() = %q", GetValidUnitsString())
	}
}
