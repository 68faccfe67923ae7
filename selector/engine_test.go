package selector

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand returns the queued values in order, then repeats the last one
type scriptedRand struct {
	values []int
	calls  []int
}

func (r *scriptedRand) Intn(n int) int {
	r.calls = append(r.calls, n)
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	if len(r.values) > 1 {
		r.values = r.values[1:]
	}
	return v % n
}

func run(e *Engine, steps int) []int {
	seq := make([]int, 0, steps)
	for i := 0; i < steps; i++ {
		seq = append(seq, e.OnClockRising().Active)
	}
	return seq
}

func TestNewState_Defaults(t *testing.T) {
	s := NewState()
	assert.Equal(t, ModeForward, s.Mode)
	assert.Equal(t, 0, s.Active)
	assert.Equal(t, 3, s.Outputs)
	assert.True(t, s.Ascending)
	assert.True(t, s.Valid())
}

func TestForward_CyclesWithPeriodOutputs(t *testing.T) {
	for n := MinOutputs; n <= MaxOutputs; n++ {
		e := NewEngineWithState(State{Mode: ModeForward, Outputs: n, Ascending: true}, nil)
		seq := run(e, 3*n)
		for i, got := range seq {
			assert.Equal(t, (i+1)%n, got, "outputs=%d step=%d", n, i)
		}
	}
}

func TestReverse_IsForwardBackwards(t *testing.T) {
	for n := MinOutputs; n <= MaxOutputs; n++ {
		e := NewEngineWithState(State{Mode: ModeReverse, Outputs: n, Ascending: true}, nil)
		seq := run(e, 3*n)
		for i, got := range seq {
			want := ((-(i + 1))%n + n) % n
			assert.Equal(t, want, got, "outputs=%d step=%d", n, i)
			assert.GreaterOrEqual(t, got, 0)
		}
	}
}

func TestPendulum_BouncesWithoutRepeatingEnds(t *testing.T) {
	e := NewEngineWithState(State{Mode: ModePendulum, Active: 0, Outputs: 3, Ascending: true}, nil)
	assert.Equal(t, []int{1, 2, 1, 0, 1, 2, 1, 0}, run(e, 8))
}

func TestPendulum_SixOutputs(t *testing.T) {
	e := NewEngineWithState(State{Mode: ModePendulum, Active: 0, Outputs: 6, Ascending: true}, nil)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 4, 3, 2, 1, 0, 1}, run(e, 11))
}

func TestPendulum_TwoOutputsAlternates(t *testing.T) {
	e := NewEngineWithState(State{Mode: ModePendulum, Active: 0, Outputs: 2, Ascending: true}, nil)
	assert.Equal(t, []int{1, 0, 1, 0}, run(e, 4))
}

func TestPendulum_SingleOutputNeverFlips(t *testing.T) {
	for _, asc := range []bool{true, false} {
		e := NewEngineWithState(State{Mode: ModePendulum, Active: 0, Outputs: 1, Ascending: asc}, nil)
		for i := 0; i < 20; i++ {
			s := e.OnClockRising()
			require.Equal(t, 0, s.Active)
			require.Equal(t, asc, s.Ascending)
		}
	}
}

func TestPendulum_HighBoundaryReflects(t *testing.T) {
	e := NewEngineWithState(State{Mode: ModePendulum, Active: 2, Outputs: 3, Ascending: true}, nil)
	s := e.OnClockRising()
	assert.Equal(t, 1, s.Active)
	assert.False(t, s.Ascending)
}

func TestPendulum_LowBoundaryReflects(t *testing.T) {
	e := NewEngineWithState(State{Mode: ModePendulum, Active: 0, Outputs: 4, Ascending: false}, nil)
	s := e.OnClockRising()
	assert.Equal(t, 1, s.Active)
	assert.True(t, s.Ascending)
}

func TestRandom_ReachesEveryIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := MinOutputs; n <= MaxOutputs; n++ {
		e := NewEngineWithState(State{Mode: ModeRandom, Outputs: n, Ascending: true}, rng)
		seen := make(map[int]bool)
		for i := 0; i < 500; i++ {
			s := e.OnClockRising()
			require.True(t, s.Valid(), "state out of range: %s", s)
			seen[s.Active] = true
		}
		assert.Len(t, seen, n, "outputs=%d", n)
	}
}

func TestRandom_SingleOutputAlwaysZero(t *testing.T) {
	rng := &scriptedRand{values: []int{5}}
	e := NewEngineWithState(State{Mode: ModeRandom, Active: 0, Outputs: 1}, rng)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 0, e.OnClockRising().Active)
	}
	assert.Empty(t, rng.calls, "single output should not consume entropy")
}

func TestRandom_UsesInjectedSource(t *testing.T) {
	rng := &scriptedRand{values: []int{2, 0, 1, 1}}
	e := NewEngineWithState(State{Mode: ModeRandom, Outputs: 3}, rng)
	assert.Equal(t, []int{2, 0, 1, 1}, run(e, 4))
	assert.Equal(t, []int{3, 3, 3, 3}, rng.calls)
}

func TestOutputCount_Clamped(t *testing.T) {
	e := NewEngine(nil)
	for i := 0; i < 10; i++ {
		s := e.DecreaseOutputs()
		require.GreaterOrEqual(t, s.Outputs, MinOutputs)
	}
	assert.Equal(t, 1, e.State().Outputs)

	for i := 0; i < 10; i++ {
		s := e.IncreaseOutputs()
		require.LessOrEqual(t, s.Outputs, MaxOutputs)
	}
	assert.Equal(t, 6, e.State().Outputs)
}

func TestDecreaseOutputs_AtOneIsNoop(t *testing.T) {
	s := DecreaseOutputs(State{Mode: ModeForward, Outputs: 1})
	assert.Equal(t, 1, s.Outputs)
}

func TestDecreaseOutputs_LeavesActiveAlone(t *testing.T) {
	e := NewEngineWithState(State{Mode: ModeForward, Active: 4, Outputs: 5, Ascending: true}, nil)
	s := e.DecreaseOutputs()
	s = e.DecreaseOutputs()
	assert.Equal(t, 3, s.Outputs)
	assert.Equal(t, 4, s.Active, "active is not re-clamped on decrease")
	assert.False(t, s.Valid())
	assert.Equal(t, 2, s.Selected())

	// The next edge pulls it back: (4+1) mod 3
	s = e.OnClockRising()
	assert.Equal(t, 2, s.Active)
	assert.True(t, s.Valid())
}

func TestTransientIndex_RestoredByEveryMode(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, mode := range Modes() {
		for _, asc := range []bool{true, false} {
			e := NewEngineWithState(State{Mode: mode, Active: 5, Outputs: 6, Ascending: asc}, rng)
			e.DecreaseOutputs()
			e.DecreaseOutputs()
			e.DecreaseOutputs()
			s := e.OnClockRising()
			assert.True(t, s.Valid(), "mode=%s asc=%v: %s", mode, asc, s)
		}
	}
}

func TestReverse_FromTransientIndex(t *testing.T) {
	s := Advance(State{Mode: ModeReverse, Active: 5, Outputs: 3}, nil)
	assert.Equal(t, 1, s.Active)
}

func TestCycleMode_FourTimesIsIdentity(t *testing.T) {
	start := State{Mode: ModeRandom, Active: 2, Outputs: 4, Ascending: false}
	e := NewEngineWithState(start, nil)

	want := []Mode{ModePendulum, ModeForward, ModeReverse, ModeRandom}
	for _, m := range want {
		s := e.CycleMode()
		assert.Equal(t, m, s.Mode)
		assert.Equal(t, start.Active, s.Active)
		assert.Equal(t, start.Outputs, s.Outputs)
		assert.Equal(t, start.Ascending, s.Ascending)
	}
	assert.Equal(t, start, e.State())
}

func TestPendulumDirection_SurvivesModeSwitch(t *testing.T) {
	e := NewEngineWithState(State{Mode: ModePendulum, Active: 2, Outputs: 3, Ascending: true}, nil)
	e.OnClockRising() // turn around at the top
	require.False(t, e.State().Ascending)

	for i := 0; i < 4; i++ {
		e.CycleMode()
	}
	assert.Equal(t, ModePendulum, e.State().Mode)
	assert.False(t, e.State().Ascending)
	assert.Equal(t, 0, e.OnClockRising().Active)
}

func TestOnClockFalling_NoChange(t *testing.T) {
	e := NewEngineWithState(State{Mode: ModePendulum, Active: 1, Outputs: 3, Ascending: true}, nil)
	before := e.State()
	assert.Equal(t, before, e.OnClockFalling())
	assert.Equal(t, before, e.State())
}

func TestScenario_ForwardWraps(t *testing.T) {
	e := NewEngineWithState(State{Mode: ModeForward, Active: 2, Outputs: 3, Ascending: true}, nil)
	assert.Equal(t, 0, e.OnClockRising().Active)
}

func TestSelected_Clamps(t *testing.T) {
	tests := []struct {
		state State
		want  int
	}{
		{State{Active: 0, Outputs: 3}, 0},
		{State{Active: 2, Outputs: 3}, 2},
		{State{Active: 5, Outputs: 3}, 2},
		{State{Active: -1, Outputs: 3}, 0},
		{State{Active: 3, Outputs: 0}, 0},
		{State{Active: 7, Outputs: 9}, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.Selected(), "%+v", tt.state)
	}
}

func TestNewEngineWithState_ClampsOutputs(t *testing.T) {
	assert.Equal(t, MaxOutputs, NewEngineWithState(State{Outputs: 12}, nil).State().Outputs)
	assert.Equal(t, MinOutputs, NewEngineWithState(State{Outputs: 0}, nil).State().Outputs)
}
