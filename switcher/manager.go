// Package switcher runs the control loop: it applies input events to the
// selection engine, routes the voltage on every tick, and refreshes the
// displays when the shown state changed.
package switcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"switcheroo/cv"
	"switcheroo/debug"
	"switcheroo/display"
	"switcheroo/input"
	"switcheroo/selector"
)

// DefaultTick is the control loop period
const DefaultTick = time.Millisecond

// Manager is the single writer of the selection state. Apply, Tick and Run
// must be called from one goroutine; Snapshot and Levels may be called from
// anywhere.
type Manager struct {
	engine   *selector.Engine
	router   *cv.Router
	displays []display.Display

	mu       sync.RWMutex
	snapshot selector.State
	dirty    bool
	edges    uint64

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a manager. The displays are refreshed once on the
// first tick.
func NewManager(engine *selector.Engine, router *cv.Router, displays ...display.Display) *Manager {
	return &Manager{
		engine:     engine,
		router:     router,
		displays:   displays,
		snapshot:   engine.State(),
		dirty:      true,
		UpdateChan: make(chan struct{}, 1),
	}
}

// AddDisplay registers another display and marks the state dirty so it
// gets drawn
func (m *Manager) AddDisplay(d display.Display) {
	m.mu.Lock()
	m.displays = append(m.displays, d)
	m.dirty = true
	m.mu.Unlock()
}

// RemoveDisplay unregisters d
func (m *Manager) RemoveDisplay(d display.Display) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.displays {
		if existing == d {
			m.displays = append(m.displays[:i:i], m.displays[i+1:]...)
			return
		}
	}
}

// Snapshot returns the current selection state
func (m *Manager) Snapshot() selector.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Levels returns the output voltages last written
func (m *Manager) Levels() [cv.NumOutputs]float64 {
	return m.router.Levels()
}

// ClockEdges returns how many rising edges have been applied
func (m *Manager) ClockEdges() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.edges
}

// Apply performs the transition for one event. A rising clock edge routes
// the outputs straight away; button events only mark the display dirty.
func (m *Manager) Apply(ev input.Event) error {
	var (
		s        selector.State
		dirty    bool
		route    bool
		isRising bool
	)

	switch ev {
	case input.ClockRising:
		s = m.engine.OnClockRising()
		route = true
		isRising = true
	case input.ClockFalling:
		s = m.engine.OnClockFalling()
	case input.Button1Short:
		s = m.engine.DecreaseOutputs()
		dirty = true
	case input.Button1Long:
		s = m.engine.CycleMode()
		dirty = true
	case input.Button2Short:
		s = m.engine.IncreaseOutputs()
		dirty = true
	case input.Button2Long:
		// reserved
		return nil
	default:
		return nil
	}

	m.mu.Lock()
	m.snapshot = s
	if dirty {
		m.dirty = true
	}
	if isRising {
		m.edges++
	}
	m.mu.Unlock()

	if isRising {
		debug.LogEvery(64, "engine", "clock -> %s", s)
	} else if dirty {
		debug.Log("engine", "%s -> %s", ev, s)
	}

	var err error
	if route {
		err = m.router.Route(s.Selected(), s.Outputs)
	}
	m.notifyUpdate()
	return err
}

// Tick samples the input, drives the outputs and redraws the displays if
// anything shown changed
func (m *Manager) Tick() error {
	s := m.engine.State()
	err := m.router.Route(s.Selected(), s.Outputs)

	m.mu.Lock()
	dirty := m.dirty
	m.dirty = false
	displays := m.displays
	m.mu.Unlock()

	if dirty {
		frame := display.FrameOf(s)
		for _, d := range displays {
			if derr := d.Show(frame); derr != nil {
				debug.Log("display", "show failed: %v", derr)
				err = errors.Join(err, derr)
			}
		}
	}
	return err
}

// Run drains events and ticks every period until ctx is done
// (blocking - run in goroutine)
func (m *Manager) Run(ctx context.Context, events <-chan input.Event, period time.Duration) error {
	if period <= 0 {
		period = DefaultTick
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	if err := m.Tick(); err != nil {
		debug.Log("route", "tick: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if err := m.Apply(ev); err != nil {
				debug.Log("route", "%s: %v", ev, err)
			}
		case <-ticker.C:
			if err := m.Tick(); err != nil {
				debug.LogEvery(1000, "route", "tick: %v", err)
			}
		}
	}
}

// Replay applies events in order followed by one tick, collecting the
// active output after every rising clock edge
func (m *Manager) Replay(events []input.Event) ([]int, error) {
	var seq []int
	var errs []error
	for _, ev := range events {
		if err := m.Apply(ev); err != nil {
			errs = append(errs, err)
		}
		if ev == input.ClockRising {
			seq = append(seq, m.Snapshot().Active)
		}
	}
	if err := m.Tick(); err != nil {
		errs = append(errs, err)
	}
	return seq, errors.Join(errs...)
}

// notifyUpdate wakes the TUI without blocking
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
