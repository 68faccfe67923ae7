package input

import (
	"sync"
	"time"

	"switcheroo/debug"
)

// Defaults for press classification
const (
	DefaultLongPress = 300 * time.Millisecond
	DefaultDebounce  = 25 * time.Millisecond
	DefaultQueueSize = 32
)

// Controller debounces edges and classifies button presses. Edges may be fed
// from any goroutine (MIDI callbacks, the internal clock, the TUI); decoded
// events are delivered on a bounded channel and dropped when it is full.
type Controller struct {
	longPress time.Duration
	debounce  time.Duration

	mu        sync.Mutex
	pressed   [numLines]bool
	pressedAt [numLines]time.Time
	lastEdge  [numLines]time.Time

	events  chan Event
	dropped uint64
}

// NewController creates a controller. A zero long press or queue size, or a
// negative debounce, falls back to the defaults.
func NewController(longPress, debounce time.Duration, queueSize int) *Controller {
	if longPress <= 0 {
		longPress = DefaultLongPress
	}
	if debounce < 0 {
		debounce = DefaultDebounce
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Controller{
		longPress: longPress,
		debounce:  debounce,
		events:    make(chan Event, queueSize),
	}
}

// Events returns the channel of decoded events
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Feed decodes an edge and queues the resulting event, if any
func (c *Controller) Feed(e Edge) {
	ev, ok := c.Decode(e)
	if !ok {
		return
	}
	c.Push(ev)
}

// Push queues an already decoded event without blocking
func (c *Controller) Push(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.mu.Lock()
		c.dropped++
		dropped := c.dropped
		c.mu.Unlock()
		debug.Log("input", "queue full, dropped %s (total %d)", ev, dropped)
	}
}

// Dropped returns how many events were lost to a full queue
func (c *Controller) Dropped() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Decode turns an edge into an event. Button events fire on release, when
// the press duration is known.
func (c *Controller) Decode(e Edge) (Event, bool) {
	if e.Line < 0 || e.Line >= numLines {
		return EventNone, false
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e.Line == LineClock {
		if e.High {
			return ClockRising, true
		}
		return ClockFalling, true
	}

	// Contact bounce: ignore level changes too close to the previous one
	last := c.lastEdge[e.Line]
	if !last.IsZero() && e.At.Sub(last) < c.debounce {
		return EventNone, false
	}
	c.lastEdge[e.Line] = e.At

	if e.High {
		// A press after the debounce window starts over even if the release
		// of a very short tap was swallowed
		c.pressed[e.Line] = true
		c.pressedAt[e.Line] = e.At
		return EventNone, false
	}

	if !c.pressed[e.Line] {
		return EventNone, false
	}
	c.pressed[e.Line] = false
	long := e.At.Sub(c.pressedAt[e.Line]) >= c.longPress

	switch e.Line {
	case LineButton1:
		if long {
			return Button1Long, true
		}
		return Button1Short, true
	case LineButton2:
		if long {
			return Button2Long, true
		}
		return Button2Short, true
	}
	return EventNone, false
}
