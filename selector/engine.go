// Package selector holds the output selection state machine: which of the
// outputs is active, and how that changes on a clock edge or a button press.
// Nothing here touches hardware or time.
package selector

import "fmt"

// Output count limits
const (
	MinOutputs     = 1
	MaxOutputs     = 6
	DefaultOutputs = 3
)

// Rand is the entropy source used by ModeRandom. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// State is the complete selection state.
//
// Active may sit outside [0, Outputs) between a DecreaseOutputs and the next
// clock edge. Use Selected when indexing outputs.
type State struct {
	Mode      Mode `json:"mode" yaml:"mode"`
	Active    int  `json:"active" yaml:"active"`
	Outputs   int  `json:"outputs" yaml:"outputs"`
	Ascending bool `json:"ascending" yaml:"ascending"`
}

// NewState returns the power-on state
func NewState() State {
	return State{
		Mode:      ModeForward,
		Active:    0,
		Outputs:   DefaultOutputs,
		Ascending: true,
	}
}

// Selected returns Active clamped into [0, Outputs-1]
func (s State) Selected() int {
	n := clampOutputs(s.Outputs)
	if s.Active < 0 {
		return 0
	}
	if s.Active >= n {
		return n - 1
	}
	return s.Active
}

// Valid reports whether Active and Outputs are both in range
func (s State) Valid() bool {
	return s.Outputs >= MinOutputs && s.Outputs <= MaxOutputs &&
		s.Active >= 0 && s.Active < s.Outputs
}

func (s State) String() string {
	dir := "up"
	if !s.Ascending {
		dir = "down"
	}
	return fmt.Sprintf("mode:%s active:%d outs:%d dir:%s", s.Mode, s.Active, s.Outputs, dir)
}

func clampOutputs(n int) int {
	return max(MinOutputs, min(n, MaxOutputs))
}

// Advance computes the state after a clock rising edge
func Advance(s State, rng Rand) State {
	n := clampOutputs(s.Outputs)

	switch s.Mode {
	case ModeForward:
		s.Active = (s.Active + 1) % n
		if s.Active < 0 {
			s.Active += n
		}
	case ModeReverse:
		s.Active = ((s.Active-1)%n + n) % n
	case ModeRandom:
		if n == 1 || rng == nil {
			s.Active = 0
		} else {
			s.Active = rng.Intn(n)
		}
	case ModePendulum:
		s = swing(s, n)
	}

	return s
}

// swing moves one step back and forth between 0 and n-1, turning around at
// each end without repeating the endpoint
func swing(s State, n int) State {
	// Single output: nowhere to go and no turnaround
	if n == 1 {
		s.Active = 0
		return s
	}

	if s.Ascending {
		if s.Active >= n-1 {
			s.Ascending = false
			s.Active = n - 2
		} else {
			s.Active = max(s.Active+1, 1)
		}
		return s
	}

	if s.Active <= 0 {
		s.Ascending = true
		s.Active = 1
	} else {
		s.Active = min(s.Active-1, n-1)
	}
	return s
}

// DecreaseOutputs removes one output from the rotation (minimum 1).
// Active is left alone; the next clock edge brings it back into range.
func DecreaseOutputs(s State) State {
	s.Outputs = max(s.Outputs-1, MinOutputs)
	return s
}

// IncreaseOutputs adds one output to the rotation (maximum 6)
func IncreaseOutputs(s State) State {
	s.Outputs = min(s.Outputs+1, MaxOutputs)
	return s
}

// CycleMode switches to the next traversal mode
func CycleMode(s State) State {
	s.Mode = s.Mode.Next()
	return s
}

// Engine owns a State and the random source it advances with
type Engine struct {
	state State
	rng   Rand
}

// NewEngine creates an engine in the power-on state
func NewEngine(rng Rand) *Engine {
	return NewEngineWithState(NewState(), rng)
}

// NewEngineWithState creates an engine starting from s
func NewEngineWithState(s State, rng Rand) *Engine {
	s.Outputs = clampOutputs(s.Outputs)
	return &Engine{state: s, rng: rng}
}

// State returns a copy of the current state
func (e *Engine) State() State {
	return e.state
}

// OnClockRising advances the selection and returns the new state
func (e *Engine) OnClockRising() State {
	e.state = Advance(e.state, e.rng)
	return e.state
}

// OnClockFalling does nothing; only the rising edge advances
func (e *Engine) OnClockFalling() State {
	return e.state
}

// DecreaseOutputs removes an output from the rotation
func (e *Engine) DecreaseOutputs() State {
	e.state = DecreaseOutputs(e.state)
	return e.state
}

// IncreaseOutputs adds an output to the rotation
func (e *Engine) IncreaseOutputs() State {
	e.state = IncreaseOutputs(e.state)
	return e.state
}

// CycleMode switches to the next mode
func (e *Engine) CycleMode() State {
	e.state = CycleMode(e.state)
	return e.state
}
