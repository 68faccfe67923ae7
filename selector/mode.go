package selector

import (
	"fmt"
	"strings"
)

// Mode is the traversal policy applied on every clock rising edge
type Mode int

const (
	ModeForward Mode = iota
	ModeReverse
	ModeRandom
	ModePendulum

	numModes = 4
)

var modeNames = []string{"Forward", "Reverse", "Random", "Pendulum"}
var modeShortNames = []string{"fwd", "rev", "rnd", "pnd"}

// Next returns the following mode in the Forward→Reverse→Random→Pendulum cycle
func (m Mode) Next() Mode {
	return Mode((int(m.normalize()) + 1) % numModes)
}

// String returns the three letter name shown on the display
func (m Mode) String() string {
	if m < 0 || m >= numModes {
		return "---"
	}
	return modeShortNames[m]
}

// Name returns the long name
func (m Mode) Name() string {
	if m < 0 || m >= numModes {
		return "Unknown"
	}
	return modeNames[m]
}

func (m Mode) normalize() Mode {
	return Mode(((int(m) % numModes) + numModes) % numModes)
}

// ParseMode accepts either the short ("pnd") or long ("pendulum") name
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := 0; i < numModes; i++ {
		if s == modeShortNames[i] || s == strings.ToLower(modeNames[i]) {
			return Mode(i), nil
		}
	}
	return ModeForward, fmt.Errorf("unknown mode %q", s)
}

// Modes returns all modes in cycle order
func Modes() []Mode {
	return []Mode{ModeForward, ModeReverse, ModeRandom, ModePendulum}
}
