package widgets

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

var testStyle = OutputStyle{ActiveSym: '*', IdleSym: 'o', OffSym: '.'}

func TestRenderOutputs(t *testing.T) {
	out := ansi.Strip(RenderOutputs([]float64{0, 4.5, 0, 0}, 3, 1, testStyle))
	assert.Equal(t, "1o  0.0V  2*  4.5V  3o  0.0V  4.  0.0V", out)
}

func TestRenderOutputs_ActiveBeyondCount(t *testing.T) {
	out := ansi.Strip(RenderOutputs([]float64{0, 0}, 1, 1, testStyle))
	assert.Equal(t, "1o  0.0V  2.  0.0V", out)
}

func TestRenderMeter(t *testing.T) {
	assert.Equal(t, "█████░░░░░", ansi.Strip(RenderMeter(5, 10, 10, [3]uint8{})))
	assert.Equal(t, "░░░░", ansi.Strip(RenderMeter(-1, 10, 4, [3]uint8{})))
	assert.Equal(t, "████", ansi.Strip(RenderMeter(20, 10, 4, [3]uint8{})))
	assert.Empty(t, RenderMeter(5, 10, 0, [3]uint8{}))
}

func TestRenderChoices(t *testing.T) {
	assert.Equal(t, " fwd >rev  rnd  pnd",
		RenderChoices([]string{"fwd", "rev", "rnd", "pnd"}, 1, '>', ' '))
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{
		Title: "Clock",
		Keys:  []KeyBinding{{Key: "space", Desc: "pulse"}},
	}})
	assert.Equal(t, "Clock\n  space        pulse", out)
}
