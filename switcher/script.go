package switcher

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"

	"switcheroo/cv"
	"switcheroo/display"
	"switcheroo/input"
	"switcheroo/selector"
)

// Result is the outcome of replaying a script
type Result struct {
	Name     string
	Sequence []int
	Final    selector.State
	Levels   [cv.NumOutputs]float64
	Frames   []display.Frame
}

// RunScript replays a script against a fresh engine with in-memory voltages
func RunScript(s input.Script) (Result, error) {
	events, err := s.ParsedEvents()
	if err != nil {
		return Result{}, err
	}

	start := selector.NewState()
	if s.Start != nil {
		if start, err = startState(s.Start); err != nil {
			return Result{}, fmt.Errorf("script %q: %w", s.Name, err)
		}
	}

	bank := cv.NewBank()
	bank.SetInput(s.Input)
	bank.SetOffset(s.Offset)

	rec := &display.Recorder{}
	m := NewManager(
		selector.NewEngineWithState(start, rand.New(rand.NewSource(s.Seed))),
		cv.NewRouter(bank, bank),
		rec,
	)

	seq, err := m.Replay(events)
	if err != nil {
		return Result{}, fmt.Errorf("script %q: %w", s.Name, err)
	}

	return Result{
		Name:     s.Name,
		Sequence: seq,
		Final:    m.Snapshot(),
		Levels:   bank.Levels(),
		Frames:   rec.Frames(),
	}, nil
}

func startState(st *input.Start) (selector.State, error) {
	s := selector.NewState()
	if st.Mode != "" {
		mode, err := selector.ParseMode(st.Mode)
		if err != nil {
			return s, err
		}
		s.Mode = mode
	}
	s.Active = st.Active
	if st.Outputs != 0 {
		s.Outputs = st.Outputs
	}
	if st.Ascending != nil {
		s.Ascending = *st.Ascending
	}
	return s, nil
}

// Check compares a result with the script's expectations and describes every
// mismatch. A script without expectations always passes.
func Check(s input.Script, r Result) error {
	if s.Expect == nil {
		return nil
	}
	exp := s.Expect

	var problems []string
	if exp.Sequence != nil && !slices.Equal(exp.Sequence, r.Sequence) {
		problems = append(problems, fmt.Sprintf("sequence %v, want %v", r.Sequence, exp.Sequence))
	}
	if exp.Mode != "" {
		mode, err := selector.ParseMode(exp.Mode)
		if err != nil {
			problems = append(problems, err.Error())
		} else if mode != r.Final.Mode {
			problems = append(problems, fmt.Sprintf("mode %s, want %s", r.Final.Mode, mode))
		}
	}
	if exp.Active != nil && *exp.Active != r.Final.Active {
		problems = append(problems, fmt.Sprintf("active %d, want %d", r.Final.Active, *exp.Active))
	}
	if exp.Outputs != nil && *exp.Outputs != r.Final.Outputs {
		problems = append(problems, fmt.Sprintf("outputs %d, want %d", r.Final.Outputs, *exp.Outputs))
	}
	if exp.Ascending != nil && *exp.Ascending != r.Final.Ascending {
		problems = append(problems, fmt.Sprintf("ascending %v, want %v", r.Final.Ascending, *exp.Ascending))
	}
	if exp.Levels != nil {
		for ch, want := range exp.Levels {
			if ch >= cv.NumOutputs {
				break
			}
			if math.Abs(r.Levels[ch]-want) > 1e-6 {
				problems = append(problems, fmt.Sprintf("output %d at %.3fV, want %.3fV", ch+1, r.Levels[ch], want))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("script %q: %s", s.Name, strings.Join(problems, "; "))
	}
	return nil
}
