package cv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct {
	failOn int
	writes int
}

func (f *failingSink) SetVoltage(ch int, volts float64) error {
	f.writes++
	if ch == f.failOn {
		return errors.New("port closed")
	}
	return nil
}

func TestRoute_OnlySelectedGetsSignal(t *testing.T) {
	bank := NewBank()
	bank.SetInput(2.0)
	bank.SetOffset(0.5)
	r := NewRouter(bank, bank)

	require.NoError(t, r.Route(1, 3))

	levels := bank.Levels()
	assert.InDelta(t, 4.5, levels[1], 1e-9, "2V sample + 0.5*5V offset")
	for ch, v := range levels {
		if ch != 1 {
			assert.Zero(t, v, "output %d", ch)
		}
	}
	assert.Equal(t, levels, r.Levels())
}

func TestRoute_PreviousOutputZeroed(t *testing.T) {
	bank := NewBank()
	bank.SetInput(3.0)
	r := NewRouter(bank, bank)

	require.NoError(t, r.Route(0, 3))
	require.NoError(t, r.Route(2, 3))

	levels := bank.Levels()
	assert.Zero(t, levels[0])
	assert.InDelta(t, 3.0, levels[2], 1e-9)
}

func TestRoute_ClampsSelection(t *testing.T) {
	bank := NewBank()
	bank.SetOffset(1)
	r := NewRouter(bank, bank)

	// Active left beyond the count after a decrease
	require.NoError(t, r.Route(4, 2))
	assert.InDelta(t, 5.0, bank.Levels()[1], 1e-9)

	require.NoError(t, r.Route(-3, 2))
	assert.InDelta(t, 5.0, bank.Levels()[0], 1e-9)

	require.NoError(t, r.Route(9, 40))
	assert.InDelta(t, 5.0, bank.Levels()[5], 1e-9)
}

func TestRoute_ClampsVoltage(t *testing.T) {
	bank := NewBank()
	bank.SetInput(9.0)
	bank.SetOffset(1)
	r := NewRouter(bank, bank)

	require.NoError(t, r.Route(0, 1))
	assert.InDelta(t, MaxOutputVoltage, bank.Levels()[0], 1e-9)
}

func TestRoute_NoSource(t *testing.T) {
	bank := NewBank()
	r := NewRouter(nil, bank)
	require.NoError(t, r.Route(0, 3))
	assert.Equal(t, [NumOutputs]float64{}, bank.Levels())
}

func TestRoute_SetSource(t *testing.T) {
	a, b := NewBank(), NewBank()
	a.SetInput(1)
	b.SetInput(7)
	out := NewBank()
	r := NewRouter(a, out)

	require.NoError(t, r.Route(0, 1))
	assert.InDelta(t, 1.0, out.Levels()[0], 1e-9)

	r.SetSource(b)
	require.NoError(t, r.Route(0, 1))
	assert.InDelta(t, 7.0, out.Levels()[0], 1e-9)
}

func TestRoute_SinkErrorsCollected(t *testing.T) {
	bank := NewBank()
	bad := &failingSink{failOn: 3}
	r := NewRouter(bank, bank)
	r.AddSink(bad)

	err := r.Route(0, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output 4")
	assert.Equal(t, NumOutputs, bad.writes, "a failing channel must not stop the others")
}

func TestBank_Clamps(t *testing.T) {
	b := NewBank()
	b.SetInput(20)
	b.SetOffset(-1)
	assert.Equal(t, MaxInputVoltage, b.ReadVoltage())
	assert.Zero(t, b.ReadOffset())

	assert.InDelta(t, 0.25, b.NudgeOffset(0.25), 1e-9)
	assert.InDelta(t, 1.0, b.NudgeOffset(5), 1e-9)

	assert.Error(t, b.SetVoltage(NumOutputs, 1))
}

func TestOffsetVoltage(t *testing.T) {
	assert.Zero(t, OffsetVoltage(0))
	assert.InDelta(t, 2.5, OffsetVoltage(0.5), 1e-9)
	assert.InDelta(t, 5.0, OffsetVoltage(1), 1e-9)
	assert.InDelta(t, 5.0, OffsetVoltage(3), 1e-9)
}

func TestRouter_RemoveSink(t *testing.T) {
	bank := NewBank()
	bank.SetInput(1)
	extra := &failingSink{failOn: -1}
	r := NewRouter(bank, bank, extra)

	require.NoError(t, r.Route(0, 1))
	assert.Equal(t, NumOutputs, extra.writes)

	r.RemoveSink(extra)
	r.RemoveSink(extra) // already gone
	require.NoError(t, r.Route(0, 1))
	assert.Equal(t, NumOutputs, extra.writes)
	assert.Same(t, bank, r.Source())
}
