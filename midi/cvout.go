package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"switcheroo/cv"
)

// CVOutput drives a MIDI-to-CV interface: each output is a controller,
// 0..MaxOutputVoltage mapped onto 0..127. Only changed values are sent.
type CVOutput struct {
	outPort drivers.Out
	send    func(msg gomidi.Message) error
	channel uint8
	ccs     []uint8

	mu   sync.Mutex
	last []int // -1 until first send
}

var _ cv.Sink = (*CVOutput)(nil)

// NewCVOutput opens outPort. channel is 0-based, ccs has one controller per
// output.
func NewCVOutput(outPort drivers.Out, channel uint8, ccs []int) (*CVOutput, error) {
	send, err := gomidi.SendTo(outPort)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	o := newCVOutput(send, channel, ccs)
	o.outPort = outPort
	return o, nil
}

func newCVOutput(send func(gomidi.Message) error, channel uint8, ccs []int) *CVOutput {
	o := &CVOutput{
		send:    send,
		channel: channel,
		ccs:     make([]uint8, len(ccs)),
		last:    make([]int, len(ccs)),
	}
	for i, cc := range ccs {
		o.ccs[i] = uint8(cc)
		o.last[i] = -1
	}
	return o
}

func (o *CVOutput) SetVoltage(ch int, volts float64) error {
	if ch < 0 || ch >= len(o.ccs) {
		return fmt.Errorf("no output %d", ch)
	}
	value := VoltsToCC(volts, cv.MaxOutputVoltage)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.last[ch] == int(value) {
		return nil
	}
	if err := o.send(gomidi.ControlChange(o.channel, o.ccs[ch], value)); err != nil {
		return err
	}
	o.last[ch] = int(value)
	return nil
}

// Close drops every output to zero
func (o *CVOutput) Close() error {
	var firstErr error
	for ch := range o.ccs {
		if err := o.SetVoltage(ch, 0); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
