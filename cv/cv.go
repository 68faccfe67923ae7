// Package cv is the voltage side of the switch: where the input sample and
// offset come from, and how the selected output gets its voltage.
package cv

import (
	"errors"
	"fmt"
	"sync"

	"switcheroo/debug"
)

// Hardware ranges
const (
	NumOutputs       = 6
	OffsetRange      = 5.0  // volts at full offset
	MaxInputVoltage  = 12.0 // analog input ceiling
	MaxOutputVoltage = 10.0 // output ceiling
)

// Source supplies the analog input and the offset knob
type Source interface {
	ReadVoltage() float64 // volts
	ReadOffset() float64  // knob position 0..1
}

// Sink drives the output channels
type Sink interface {
	SetVoltage(ch int, volts float64) error
}

// Adapter is a combined Source and Sink
type Adapter interface {
	Source
	Sink
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// OffsetVoltage converts a knob position into volts
func OffsetVoltage(position float64) float64 {
	return OffsetRange * Clamp(position, 0, 1)
}

// Router writes the routed voltage to the selected output and zero to the rest
type Router struct {
	source Source
	sinks  []Sink

	mu     sync.RWMutex
	levels [NumOutputs]float64
}

// NewRouter creates a router reading from source and writing to every sink
func NewRouter(source Source, sinks ...Sink) *Router {
	return &Router{source: source, sinks: sinks}
}

// SetSource replaces the input source (a MIDI panel connecting or going away)
func (r *Router) SetSource(src Source) {
	r.mu.Lock()
	r.source = src
	r.mu.Unlock()
}

// AddSink adds another output destination
func (r *Router) AddSink(s Sink) {
	r.mu.Lock()
	r.sinks = append(r.sinks, s)
	r.mu.Unlock()
}

// RemoveSink stops writing to s
func (r *Router) RemoveSink(s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, sink := range r.sinks {
		if sink == s {
			r.sinks = append(r.sinks[:i:i], r.sinks[i+1:]...)
			return
		}
	}
}

// Source returns the current input source
func (r *Router) Source() Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

// Route samples the source and drives all outputs. selected is clamped into
// [0, count-1] and count into [1, NumOutputs] before use.
func (r *Router) Route(selected, count int) error {
	count = max(1, min(count, NumOutputs))
	selected = max(0, min(selected, count-1))

	r.mu.RLock()
	src := r.source
	r.mu.RUnlock()

	var sample, offset float64
	if src != nil {
		sample = Clamp(src.ReadVoltage(), 0, MaxInputVoltage)
		offset = OffsetVoltage(src.ReadOffset())
	}
	value := Clamp(sample+offset, 0, MaxOutputVoltage)

	var next [NumOutputs]float64
	next[selected] = value

	r.mu.Lock()
	r.levels = next
	sinks := r.sinks
	r.mu.Unlock()

	var errs []error
	for _, s := range sinks {
		for ch := 0; ch < NumOutputs; ch++ {
			if err := s.SetVoltage(ch, next[ch]); err != nil {
				errs = append(errs, fmt.Errorf("output %d: %w", ch+1, err))
			}
		}
	}
	if len(errs) > 0 {
		debug.Log("route", "route to %d failed: %v", selected, errs[0])
	}
	return errors.Join(errs...)
}

// Levels returns the voltages last written
func (r *Router) Levels() [NumOutputs]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.levels
}

// Bank is an in-memory Adapter: knob positions are set by hand and output
// voltages are just remembered
type Bank struct {
	mu     sync.RWMutex
	input  float64
	offset float64
	levels [NumOutputs]float64
}

// NewBank creates a bank with all outputs at zero
func NewBank() *Bank {
	return &Bank{}
}

// SetInput sets the analog input voltage
func (b *Bank) SetInput(volts float64) {
	b.mu.Lock()
	b.input = Clamp(volts, 0, MaxInputVoltage)
	b.mu.Unlock()
}

// SetOffset sets the offset knob position (0..1)
func (b *Bank) SetOffset(position float64) {
	b.mu.Lock()
	b.offset = Clamp(position, 0, 1)
	b.mu.Unlock()
}

// NudgeOffset moves the offset knob by delta and returns the new position
func (b *Bank) NudgeOffset(delta float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offset = Clamp(b.offset+delta, 0, 1)
	return b.offset
}

func (b *Bank) ReadVoltage() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.input
}

func (b *Bank) ReadOffset() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offset
}

func (b *Bank) SetVoltage(ch int, volts float64) error {
	if ch < 0 || ch >= NumOutputs {
		return fmt.Errorf("no output %d", ch)
	}
	b.mu.Lock()
	b.levels[ch] = volts
	b.mu.Unlock()
	return nil
}

// Levels returns the current output voltages
func (b *Bank) Levels() [NumOutputs]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.levels
}
