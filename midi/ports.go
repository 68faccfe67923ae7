package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ScanTimeout bounds a port scan (CoreMIDI can hang)
const ScanTimeout = 3 * time.Second

// ErrScanTimeout is returned when the MIDI driver does not answer in time
var ErrScanTimeout = errors.New("midi port scan timed out")

// Ports is a snapshot of the available MIDI ports
type Ports struct {
	In  []drivers.In
	Out []drivers.Out
}

// InNames returns the input port names
func (p Ports) InNames() []string {
	names := make([]string, 0, len(p.In))
	for _, in := range p.In {
		names = append(names, in.String())
	}
	return names
}

// OutNames returns the output port names
func (p Ports) OutNames() []string {
	names := make([]string, 0, len(p.Out))
	for _, out := range p.Out {
		names = append(names, out.String())
	}
	return names
}

// Scan lists the MIDI ports, giving up after timeout
func Scan(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{In: gomidi.GetInPorts(), Out: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return Ports{}, ErrScanTimeout
	}
}

// MatchName reports whether a port name contains want, ignoring case
func MatchName(portName, want string) bool {
	if want == "" {
		return false
	}
	return strings.Contains(strings.ToLower(portName), strings.ToLower(want))
}

// FindOut returns the first output port whose name contains want
func (p Ports) FindOut(want string) (drivers.Out, error) {
	for _, out := range p.Out {
		if MatchName(out.String(), want) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("no MIDI output matching %q", want)
}

// FindIn returns the first input port whose name contains want
func (p Ports) FindIn(want string) (drivers.In, error) {
	for _, in := range p.In {
		if MatchName(in.String(), want) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input matching %q", want)
}
