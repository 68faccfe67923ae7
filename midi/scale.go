package midi

import "math"

// CCToVolts maps a 7-bit controller value onto [0, maxVolts]
func CCToVolts(value uint8, maxVolts float64) float64 {
	if value > 127 {
		value = 127
	}
	return float64(value) / 127 * maxVolts
}

// VoltsToCC maps [0, maxVolts] onto a 7-bit controller value, rounding to
// the nearest step
func VoltsToCC(volts, maxVolts float64) uint8 {
	if maxVolts <= 0 || volts <= 0 || math.IsNaN(volts) {
		return 0
	}
	if volts >= maxVolts {
		return 127
	}
	return uint8(math.Round(volts / maxVolts * 127))
}

// CCToPosition maps a 7-bit controller value onto a knob position 0..1
func CCToPosition(value uint8) float64 {
	return CCToVolts(value, 1)
}
