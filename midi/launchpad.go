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
	"switcheroo/display"
	"switcheroo/input"
	"switcheroo/selector"
)

var ledSendCount uint64

// Pad layout on the Launchpad X grid (row 0 is the bottom row)
const (
	OutputRow = 7 // one pad per output, lit when driven
	CountRow  = 6 // pads 0..outputs-1 lit
	ModeRow   = 5 // one pad per mode

	Button1Pad = 0 // row 0
	Button2Pad = 1 // row 0
	ClockPad   = 7 // row 0, manual clock
)

// Pad colours
var (
	colorOff      = [3]uint8{0, 0, 0}
	colorActive   = [3]uint8{0, 255, 0}
	colorIdle     = [3]uint8{0, 100, 0}
	colorCount    = [3]uint8{0, 100, 255}
	colorMode     = [3]uint8{255, 100, 0}
	colorButton   = [3]uint8{40, 60, 120}
	colorClockPad = [3]uint8{180, 180, 60}
)

type ledUpdate struct {
	Row, Col int
	Color    [3]uint8
}

type padKey struct{ row, col int }

// LaunchpadPanel uses a Novation Launchpad X as the two buttons and a manual
// clock, shows the output being driven and is a display for count and mode
type LaunchpadPanel struct {
	id       string
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()
	now      func() time.Time

	edgeMu sync.Mutex
	edges  chan input.Edge
	closed bool

	mu      sync.Mutex
	prev    map[padKey][3]uint8
	outputs int
	lit     [cv.NumOutputs]bool
}

var (
	_ Panel           = (*LaunchpadPanel)(nil)
	_ cv.Sink         = (*LaunchpadPanel)(nil)
	_ display.Display = (*LaunchpadPanel)(nil)
)

// NewLaunchpadPanel creates and configures a Launchpad
func NewLaunchpadPanel(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadPanel, error) {
	var send func(gomidi.Message) error
	if outPort != nil {
		s, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		send = s
	}

	lp := newLaunchpadPanel(id, send)
	lp.inPort = inPort
	lp.outPort = outPort

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			lp.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

func newLaunchpadPanel(id string, send func(gomidi.Message) error) *LaunchpadPanel {
	lp := &LaunchpadPanel{
		id:    id,
		send:  send,
		now:   time.Now,
		edges: make(chan input.Edge, 32),
		prev:  make(map[padKey][3]uint8),

		outputs: selector.DefaultOutputs,
	}

	if send != nil {
		// Programmer mode: F0 00 20 29 02 0C 00 7F F7
		send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))
		// Full brightness: F0 00 20 29 02 0C 08 7F F7
		send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}))

		lp.setLEDs([]ledUpdate{
			{Row: 0, Col: Button1Pad, Color: colorButton},
			{Row: 0, Col: Button2Pad, Color: colorButton},
			{Row: 0, Col: ClockPad, Color: colorClockPad},
		})
	}
	return lp
}

func (lp *LaunchpadPanel) ID() string {
	return lp.id
}

func (lp *LaunchpadPanel) Edges() <-chan input.Edge {
	return lp.edges
}

func (lp *LaunchpadPanel) handle(msg gomidi.Message) {
	var channel, note, velocity uint8

	var high bool
	switch {
	case msg.GetNoteStart(&channel, &note, &velocity):
		high = true
	case msg.GetNoteEnd(&channel, &note):
		high = false
	default:
		return
	}

	row, col := noteToRowCol(note)
	if row != 0 {
		return
	}

	var line input.Line
	switch col {
	case Button1Pad:
		line = input.LineButton1
	case Button2Pad:
		line = input.LineButton2
	case ClockPad:
		line = input.LineClock
	default:
		return
	}

	lp.edgeMu.Lock()
	defer lp.edgeMu.Unlock()
	if lp.closed {
		return
	}
	select {
	case lp.edges <- input.Edge{Line: line, High: high, At: lp.now()}:
	default:
		debug.Log("midi", "%s: edge queue full, dropped %s", lp.id, line)
	}
}

// SetVoltage lights the output's pad in the top row
func (lp *LaunchpadPanel) SetVoltage(ch int, volts float64) error {
	if ch < 0 || ch >= cv.NumOutputs {
		return fmt.Errorf("no output %d", ch)
	}

	lp.mu.Lock()
	lp.lit[ch] = volts > 0
	color := lp.outputColor(ch)
	lp.mu.Unlock()

	return lp.setLEDs([]ledUpdate{{Row: OutputRow, Col: ch, Color: color}})
}

// Show draws the output count and mode rows
func (lp *LaunchpadPanel) Show(f display.Frame) error {
	lp.mu.Lock()
	lp.outputs = f.Outputs
	var updates []ledUpdate
	for col := 0; col < cv.NumOutputs; col++ {
		color := colorOff
		if col < f.Outputs {
			color = colorCount
		}
		updates = append(updates,
			ledUpdate{Row: CountRow, Col: col, Color: color},
			ledUpdate{Row: OutputRow, Col: col, Color: lp.outputColor(col)},
		)
	}
	lp.mu.Unlock()

	for _, mode := range selector.Modes() {
		color := colorOff
		if mode == f.Mode {
			color = colorMode
		}
		updates = append(updates, ledUpdate{Row: ModeRow, Col: int(mode), Color: color})
	}
	return lp.setLEDs(updates)
}

// outputColor is bright when driven, dim when in use. Caller holds mu.
func (lp *LaunchpadPanel) outputColor(ch int) [3]uint8 {
	switch {
	case lp.lit[ch]:
		return colorActive
	case ch < lp.outputs:
		return colorIdle
	default:
		return colorOff
	}
}

// setLEDs sends only the pads whose colour changed
func (lp *LaunchpadPanel) setLEDs(updates []ledUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	lp.mu.Lock()
	defer lp.mu.Unlock()

	var sent uint64
	for _, u := range updates {
		key := padKey{u.Row, u.Col}
		if prev, ok := lp.prev[key]; ok && prev == u.Color {
			continue
		}
		if err := lp.send(gomidi.NoteOn(0, rowColToNote(u.Row, u.Col), mapRGBToLaunchpad(u.Color))); err != nil {
			return fmt.Errorf("led %d,%d: %w", u.Row, u.Col, err)
		}
		lp.prev[key] = u.Color
		sent++
	}

	if sent > 0 {
		count := atomic.AddUint64(&ledSendCount, sent)
		if count%100 < sent {
			debug.Log("lp-send", "batch count=%d (this batch=%d)", count, sent)
		}
	}
	return nil
}

// mapRGBToLaunchpad finds the nearest Launchpad X palette color for an RGB value
func mapRGBToLaunchpad(rgb [3]uint8) uint8 {
	// Format: {velocity, R, G, B}
	palette := [][4]uint8{
		{0, 0, 0, 0},         // off
		{5, 255, 0, 0},       // red
		{9, 255, 100, 0},     // orange
		{13, 255, 200, 0},    // yellow
		{19, 0, 100, 0},      // dim green
		{21, 0, 255, 0},      // bright green
		{37, 0, 200, 200},    // cyan
		{43, 40, 60, 120},    // dim blue
		{45, 0, 100, 255},    // blue
		{97, 180, 180, 60},   // dim yellow
		{119, 255, 255, 255}, // white
	}

	bestMatch := uint8(0)
	bestDist := 1 << 30

	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])
	for _, p := range palette {
		pr, pg, pb := int(p[1]), int(p[2]), int(p[3])
		dist := (r-pr)*(r-pr) + (g-pg)*(g-pg) + (b-pb)*(b-pb)
		if dist < bestDist {
			bestDist = dist
			bestMatch = p[0]
		}
	}
	return bestMatch
}

func (lp *LaunchpadPanel) Close() error {
	if lp.send != nil {
		var updates []ledUpdate
		for row := 0; row < 8; row++ {
			for col := 0; col < 8; col++ {
				updates = append(updates, ledUpdate{Row: row, Col: col, Color: colorOff})
			}
		}
		lp.setLEDs(updates)
	}
	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	lp.edgeMu.Lock()
	defer lp.edgeMu.Unlock()
	if !lp.closed {
		lp.closed = true
		close(lp.edges)
	}
	return nil
}

// Launchpad X programmer mode grid: row 0 (bottom) = notes 11-18,
// row 7 = notes 81-88
func rowColToNote(row, col int) uint8 {
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return -1, -1
	}
	return row, col
}
