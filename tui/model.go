package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"switcheroo/cv"
	"switcheroo/input"
	"switcheroo/midi"
	"switcheroo/selector"
	"switcheroo/switcher"
	"switcheroo/theme"
	"switcheroo/widgets"
)

const (
	refreshRate = 50 * time.Millisecond
	offsetStep  = 0.05
	inputStep   = 0.5
)

type Model struct {
	Manager   *switcher.Manager
	Input     *input.Controller
	Screen    *Screen
	Bank      *cv.Bank            // keyboard-controlled input and offset
	Rig       *switcher.Rig       // nil without MIDI
	DeviceMgr *midi.DeviceManager // nil without MIDI
	Theme     *theme.Theme

	quitting bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

type refreshMsg struct{}

func NewModel(manager *switcher.Manager, in *input.Controller, screen *Screen, bank *cv.Bank, th *theme.Theme) Model {
	return Model{
		Manager: manager,
		Input:   in,
		Screen:  screen,
		Bank:    bank,
		Theme:   th,
	}
}

// WithDevices enables hot-plugged MIDI panels
func (m Model) WithDevices(rig *switcher.Rig, dm *midi.DeviceManager) Model {
	m.Rig = rig
	m.DeviceMgr = dm
	return m
}

func ListenForUpdates(manager *switcher.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshRate, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Manager), refresh()}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

// KeyEvents maps a key to the events it stands for. The keyboard bypasses
// the debouncer: a key is already a clean press.
func KeyEvents(key string) []input.Event {
	switch key {
	case " ", "space":
		return []input.Event{input.ClockRising, input.ClockFalling}
	case "[":
		return []input.Event{input.Button1Short}
	case "{":
		return []input.Event{input.Button1Long}
	case "]":
		return []input.Event{input.Button2Short}
	case "}":
		return []input.Event{input.Button2Long}
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if evs := KeyEvents(key); evs != nil {
			for _, ev := range evs {
				m.Input.Push(ev)
			}
			return m, nil
		}

		switch key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "+", "=":
			if m.Bank != nil {
				m.Bank.NudgeOffset(offsetStep)
			}

		case "-", "_":
			if m.Bank != nil {
				m.Bank.NudgeOffset(-offsetStep)
			}

		case ">", ".":
			if m.Bank != nil {
				m.Bank.SetInput(m.Bank.ReadVoltage() + inputStep)
			}

		case "<", ",":
			if m.Bank != nil {
				m.Bank.SetInput(m.Bank.ReadVoltage() - inputStep)
			}
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case refreshMsg:
		return m, refresh()

	case DeviceEventMsg:
		if m.Rig != nil {
			m.Rig.HandleDevice(midi.DeviceEvent(msg))
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.Manager.Snapshot()
	levels := m.Manager.Levels()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	screenStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.Theme.Muted()).
		Foreground(m.Theme.FG()).
		Padding(0, 1)

	deviceStatus := ""
	if m.Rig != nil {
		if ids := m.Rig.Attached(); len(ids) > 0 {
			deviceStatus = "  midi:" + strings.Join(ids, ",")
		}
	}
	header := headerStyle.Render(fmt.Sprintf("switcheroo  clock:%d  dropped:%d%s",
		m.Manager.ClockEdges(), m.Input.Dropped(), deviceStatus))

	screenText := "(starting)"
	if f, ok := m.Screen.Frame(); ok {
		screenText = strings.Join(f.Lines(), "\n")
	}
	screen := screenStyle.Render(screenText)

	sym := m.Theme.Symbols
	outputs := widgets.RenderOutputs(levels[:], s.Outputs, s.Selected(), widgets.OutputStyle{
		Active:    m.Theme.RGB(theme.RoleSuccess),
		Idle:      m.Theme.RGB(theme.RoleFG),
		Off:       m.Theme.RGB(theme.RoleMuted),
		ActiveSym: sym.OutputActive,
		IdleSym:   sym.OutputIdle,
		OffSym:    sym.OutputOff,
	})

	var names []string
	for _, mode := range selector.Modes() {
		names = append(names, mode.String())
	}
	modes := widgets.RenderChoices(names, int(s.Mode), sym.Selected, sym.Unselected)

	var knobs string
	if m.Bank != nil {
		in := m.Bank.ReadVoltage()
		off := m.Bank.ReadOffset()
		knobs = fmt.Sprintf("in     %s %4.1fV\noffset %s %4.2f",
			widgets.RenderMeter(in, cv.MaxInputVoltage, 24, m.Theme.RGB(theme.RoleActive)), in,
			widgets.RenderMeter(off, 1, 24, m.Theme.RGB(theme.RoleWarning)), off)
	}

	help := dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{{
		Keys: []widgets.KeyBinding{
			{Key: "space", Desc: "clock pulse"},
			{Key: "[ / {", Desc: "button 1 short (fewer outputs) / long (next mode)"},
			{Key: "] / }", Desc: "button 2 short (more outputs) / long"},
			{Key: "+ / -", Desc: "offset knob"},
			{Key: "> / <", Desc: "input voltage"},
			{Key: "q", Desc: "quit"},
		},
	}}))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(screen)
	out.WriteString("\n\n")
	out.WriteString(outputs)
	out.WriteString("\n")
	out.WriteString(modes)
	out.WriteString("\n\n")
	if knobs != "" {
		out.WriteString(knobs)
		out.WriteString("\n\n")
	}
	out.WriteString(help)

	return out.String()
}
