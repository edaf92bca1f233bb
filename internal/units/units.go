// Package units provides shared constants and conversions for angle units
package units

import "math"

// Unit constants
const (
	RAD = "rad"
	DEG = "deg"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{RAD, DEG}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "rad, deg"
}

// ConvertAngle converts an angle from radians to the target units.
// Series are always computed in radians.
func ConvertAngle(angleRad float64, targetUnits string) float64 {
	switch targetUnits {
	case DEG:
		return angleRad * 180 / math.Pi
	default:
		return angleRad
	}
}

// ToRadians converts an angle expressed in the given units back to radians.
func ToRadians(angle float64, fromUnits string) float64 {
	switch fromUnits {
	case DEG:
		return angle * math.Pi / 180
	default:
		return angle
	}
}

// AngularFrequency returns ω = 2πf in rad/s for a frequency in Hz.
func AngularFrequency(hz float64) float64 {
	return 2 * math.Pi * hz
}

// TimeToAngle maps an instant in seconds to electrical angle in radians.
func TimeToAngle(seconds, hz float64) float64 {
	return seconds * AngularFrequency(hz)
}

// AngleToTime maps an electrical angle in radians back to seconds.
func AngleToTime(angleRad, hz float64) float64 {
	return angleRad / AngularFrequency(hz)
}

// Label returns the axis label for an angle unit.
func Label(unit string) string {
	if unit == DEG {
		return "Angle (deg)"
	}
	return "Angle (rad)"
}
