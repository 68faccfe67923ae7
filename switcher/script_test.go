package switcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switcheroo/input"
)

func TestScenarios(t *testing.T) {
	scripts, err := input.LoadScripts("testdata/scenarios.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, scripts)

	for _, s := range scripts {
		t.Run(s.Name, func(t *testing.T) {
			res, err := RunScript(s)
			require.NoError(t, err)
			assert.NoError(t, Check(s, res))
		})
	}
}

func TestRunScript_RandomIsSeeded(t *testing.T) {
	s := input.Script{
		Name:   "rnd",
		Seed:   1234,
		Start:  &input.Start{Mode: "rnd", Outputs: 6},
		Events: []string{"clock", "clock", "clock", "clock", "clock", "clock", "clock", "clock"},
	}

	a, err := RunScript(s)
	require.NoError(t, err)
	b, err := RunScript(s)
	require.NoError(t, err)

	assert.Equal(t, a.Sequence, b.Sequence)
	for _, idx := range a.Sequence {
		assert.True(t, idx >= 0 && idx < 6)
	}
}

func TestRunScript_BadStartMode(t *testing.T) {
	_, err := RunScript(input.Script{Name: "bad", Start: &input.Start{Mode: "diagonal"}})
	assert.Error(t, err)
}

func TestCheck_ReportsMismatch(t *testing.T) {
	active := 2
	s := input.Script{
		Name:   "wrong",
		Events: []string{"clock"},
		Expect: &input.Expect{Sequence: []int{2}, Active: &active, Mode: "rev"},
	}

	res, err := RunScript(s)
	require.NoError(t, err)

	err = Check(s, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sequence [1], want [2]")
	assert.Contains(t, err.Error(), "active 1, want 2")
	assert.Contains(t, err.Error(), "mode fwd, want rev")
}

func TestCheck_NoExpectations(t *testing.T) {
	assert.NoError(t, Check(input.Script{}, Result{}))
}
