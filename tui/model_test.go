package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switcheroo/cv"
	"switcheroo/display"
	"switcheroo/input"
	"switcheroo/selector"
	"switcheroo/switcher"
	"switcheroo/theme"
)

func newTestModel() (Model, *input.Controller, *cv.Bank) {
	bank := cv.NewBank()
	screen := NewScreen()
	m := switcher.NewManager(selector.NewEngine(nil), cv.NewRouter(bank, bank), screen)
	in := input.NewController(0, 0, 0)
	return NewModel(m, in, screen, bank, theme.New(theme.Plasma())), in, bank
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func drain(in *input.Controller) []input.Event {
	var evs []input.Event
	for {
		select {
		case ev := <-in.Events():
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

func TestKeyEvents(t *testing.T) {
	assert.Equal(t, []input.Event{input.ClockRising, input.ClockFalling}, KeyEvents(" "))
	assert.Equal(t, []input.Event{input.Button1Short}, KeyEvents("["))
	assert.Equal(t, []input.Event{input.Button1Long}, KeyEvents("{"))
	assert.Equal(t, []input.Event{input.Button2Short}, KeyEvents("]"))
	assert.Equal(t, []input.Event{input.Button2Long}, KeyEvents("}"))
	assert.Nil(t, KeyEvents("x"))
}

func TestUpdate_KeysPushEvents(t *testing.T) {
	m, in, _ := newTestModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Nil(t, cmd)
	m.Update(runes("{"))
	m.Update(runes("]"))

	assert.Equal(t, []input.Event{
		input.ClockRising, input.ClockFalling, input.Button1Long, input.Button2Short,
	}, drain(in))
}

func TestUpdate_Knobs(t *testing.T) {
	m, _, bank := newTestModel()

	m.Update(runes("+"))
	m.Update(runes("+"))
	m.Update(runes("-"))
	assert.InDelta(t, offsetStep, bank.ReadOffset(), 1e-9)

	m.Update(runes(">"))
	m.Update(runes(">"))
	m.Update(runes("<"))
	assert.InDelta(t, inputStep, bank.ReadVoltage(), 1e-9)

	m.Update(runes("<"))
	m.Update(runes("<"))
	assert.Zero(t, bank.ReadVoltage(), "clamped at 0V")
}

func TestUpdate_Quit(t *testing.T) {
	m, _, _ := newTestModel()

	next, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}

func TestView_ShowsScreenAndOutputs(t *testing.T) {
	m, _, bank := newTestModel()
	bank.SetInput(4)

	assert.Contains(t, ansi.Strip(m.View()), "(starting)")

	require.NoError(t, m.Manager.Tick())
	require.NoError(t, m.Manager.Apply(input.ClockRising))

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Switcheroo v1.0")
	assert.Contains(t, view, "outs:3")
	assert.Contains(t, view, "mode:fwd")
	assert.Contains(t, view, "2●  4.0V")
	assert.Contains(t, view, "clock:1")
}

func TestScreen(t *testing.T) {
	s := NewScreen()
	_, ok := s.Frame()
	assert.False(t, ok)

	f := display.FrameOf(selector.NewState())
	require.NoError(t, s.Show(f))
	got, ok := s.Frame()
	assert.True(t, ok)
	assert.Equal(t, f, got)
	assert.Equal(t, 1, s.Refreshes())
}
