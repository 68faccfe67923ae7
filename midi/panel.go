package midi

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"switcheroo/cv"
	"switcheroo/debug"
	"switcheroo/input"
)

// Panel is a control surface delivering clock and button edges
type Panel interface {
	ID() string
	Edges() <-chan input.Edge
	Close() error
}

// Mapping says which notes and controllers carry which signal
type Mapping struct {
	Channel     uint8 // 0-based MIDI channel
	ClockNote   uint8
	Button1Note uint8
	Button2Note uint8
	AnalogCC    uint8
	OffsetCC    uint8
}

// NotePanel reads a gate-to-MIDI style input: the clock and both buttons are
// notes, the analog input and offset knob are controllers. It is also the
// cv.Source for the router.
type NotePanel struct {
	id       string
	inPort   drivers.In
	stopFunc func()
	mapping  Mapping
	now      func() time.Time

	edgeMu sync.Mutex
	edges  chan input.Edge
	closed bool

	analog atomic.Uint32 // last CC value
	offset atomic.Uint32
}

var _ cv.Source = (*NotePanel)(nil)

// NewNotePanel opens inPort and starts decoding. A nil port gives a panel
// that only reports its latched values (for tests).
func NewNotePanel(id string, inPort drivers.In, m Mapping) (*NotePanel, error) {
	p := &NotePanel{
		id:      id,
		inPort:  inPort,
		mapping: m,
		now:     time.Now,
		edges:   make(chan input.Edge, 32),
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			p.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		p.stopFunc = stop
	}

	return p, nil
}

func (p *NotePanel) ID() string {
	return p.id
}

func (p *NotePanel) Edges() <-chan input.Edge {
	return p.edges
}

// ReadVoltage returns the analog input in volts
func (p *NotePanel) ReadVoltage() float64 {
	return CCToVolts(uint8(p.analog.Load()), cv.MaxInputVoltage)
}

// ReadOffset returns the offset knob position 0..1
func (p *NotePanel) ReadOffset() float64 {
	return CCToPosition(uint8(p.offset.Load()))
}

func (p *NotePanel) handle(msg gomidi.Message) {
	var channel, key, velocity, cc, value uint8

	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		if channel == p.mapping.Channel {
			p.noteEdge(key, true)
		}
	case msg.GetNoteEnd(&channel, &key):
		if channel == p.mapping.Channel {
			p.noteEdge(key, false)
		}
	case msg.GetControlChange(&channel, &cc, &value):
		if channel != p.mapping.Channel {
			return
		}
		switch cc {
		case p.mapping.AnalogCC:
			p.analog.Store(uint32(value))
		case p.mapping.OffsetCC:
			p.offset.Store(uint32(value))
		}
	}
}

func (p *NotePanel) noteEdge(key uint8, high bool) {
	var line input.Line
	switch key {
	case p.mapping.ClockNote:
		line = input.LineClock
	case p.mapping.Button1Note:
		line = input.LineButton1
	case p.mapping.Button2Note:
		line = input.LineButton2
	default:
		return
	}

	p.edgeMu.Lock()
	defer p.edgeMu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.edges <- input.Edge{Line: line, High: high, At: p.now()}:
	default:
		debug.Log("midi", "%s: edge queue full, dropped %s", p.id, line)
	}
}

// Close stops listening and closes the edge channel. Callbacks still in
// flight are discarded.
func (p *NotePanel) Close() error {
	if p.stopFunc != nil {
		p.stopFunc()
	}
	p.edgeMu.Lock()
	defer p.edgeMu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.edges)
	}
	return nil
}
