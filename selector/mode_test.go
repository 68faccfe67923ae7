package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode_Cycle(t *testing.T) {
	assert.Equal(t, ModeReverse, ModeForward.Next())
	assert.Equal(t, ModeRandom, ModeReverse.Next())
	assert.Equal(t, ModePendulum, ModeRandom.Next())
	assert.Equal(t, ModeForward, ModePendulum.Next())
}

func TestMode_Names(t *testing.T) {
	assert.Equal(t, []string{"fwd", "rev", "rnd", "pnd"}, []string{
		ModeForward.String(), ModeReverse.String(), ModeRandom.String(), ModePendulum.String(),
	})
	assert.Equal(t, "Pendulum", ModePendulum.Name())
	assert.Equal(t, "---", Mode(9).String())
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)

		got, err = ParseMode(m.Name())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseMode("  PND ")
	require.NoError(t, err)
	assert.Equal(t, ModePendulum, got)

	_, err = ParseMode("sideways")
	assert.Error(t, err)
}
