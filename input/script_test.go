package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	for ev, name := range eventNames {
		if ev == EventNone {
			continue
		}
		got, err := ParseEvent(name)
		require.NoError(t, err)
		assert.Equal(t, ev, got)
	}

	got, err := ParseEvent(" B2-LONG ")
	require.NoError(t, err)
	assert.Equal(t, Button2Long, got)

	_, err = ParseEvent("none")
	assert.ErrorIs(t, err, ErrUnknownEvent)
	_, err = ParseEvent("reset")
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestLoadScripts(t *testing.T) {
	scripts, err := LoadScripts("testdata/scripts.yaml")
	require.NoError(t, err)
	require.Len(t, scripts, 2)

	first := scripts[0]
	assert.Equal(t, "forward-wrap", first.Name)
	assert.InDelta(t, 1.5, first.Input, 1e-9)
	assert.InDelta(t, 0.2, first.Offset, 1e-9)
	require.NotNil(t, first.Expect)
	assert.Equal(t, []int{1, 2, 0}, first.Expect.Sequence)

	events, err := scripts[1].ParsedEvents()
	require.NoError(t, err)
	assert.Equal(t, []Event{Button1Long, Button1Long, Button1Long, ClockFalling}, events)
}

func TestParseScripts_RejectsUnknownEvent(t *testing.T) {
	_, err := ParseScripts([]byte("name: bad\nevents: [clock, wiggle]\n"))
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestParseScripts_RejectsUnknownField(t *testing.T) {
	_, err := ParseScripts([]byte("name: bad\ntempo: 120\nevents: [clock]\n"))
	assert.Error(t, err)
}

func TestLoadScripts_MissingFile(t *testing.T) {
	_, err := LoadScripts("testdata/nope.yaml")
	assert.Error(t, err)
}
