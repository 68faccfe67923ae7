package tui

import (
	"sync"

	"switcheroo/display"
)

// Screen is the terminal stand-in for the module's status screen. The
// control loop calls Show; the model reads the last frame in View.
type Screen struct {
	mu    sync.RWMutex
	frame display.Frame
	shown int
}

var _ display.Display = (*Screen)(nil)

func NewScreen() *Screen {
	return &Screen{}
}

func (s *Screen) Show(f display.Frame) error {
	s.mu.Lock()
	s.frame = f
	s.shown++
	s.mu.Unlock()
	return nil
}

// Frame returns the last frame shown, false before the first refresh
func (s *Screen) Frame() (display.Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.shown > 0
}

// Refreshes returns how many times the screen was redrawn
func (s *Screen) Refreshes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shown
}
