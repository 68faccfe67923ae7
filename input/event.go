// Package input turns raw clock and button edges into the discrete events
// the switch reacts to.
package input

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event is a decoded hardware event
type Event int

const (
	EventNone Event = iota
	ClockRising
	ClockFalling
	Button1Short
	Button1Long
	Button2Short
	Button2Long
)

var eventNames = map[Event]string{
	EventNone:    "none",
	ClockRising:  "clock",
	ClockFalling: "clock-off",
	Button1Short: "b1",
	Button1Long:  "b1-long",
	Button2Short: "b2",
	Button2Long:  "b2-long",
}

// ErrUnknownEvent is returned by ParseEvent for names it does not know
var ErrUnknownEvent = errors.New("unknown event")

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ParseEvent parses the names used in scripts ("clock", "b1-long", ...)
func ParseEvent(s string) (Event, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for ev, name := range eventNames {
		if ev != EventNone && name == s {
			return ev, nil
		}
	}
	return EventNone, fmt.Errorf("%w: %q", ErrUnknownEvent, s)
}

// Line identifies a physical input line
type Line int

const (
	LineClock Line = iota
	LineButton1
	LineButton2

	numLines = 3
)

func (l Line) String() string {
	switch l {
	case LineClock:
		return "clock"
	case LineButton1:
		return "button1"
	case LineButton2:
		return "button2"
	}
	return fmt.Sprintf("line(%d)", int(l))
}

// Edge is a raw level change on a line. High means pressed / gate on.
type Edge struct {
	Line Line
	High bool
	At   time.Time
}
