package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"

	"switcheroo/debug"
)

// DeviceEvent is emitted when panels connect/disconnect
type DeviceEvent struct {
	Type  DeviceEventType
	Panel Panel // nil on disconnect
	ID    string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// DeviceManager handles hot-plug detection of the input panel and Launchpads
type DeviceManager struct {
	mapping   Mapping
	inputPort string // name substring of the note panel port, "" for none
	launchpad bool

	panels   map[string]Panel
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration

	scanFn func(time.Duration) (Ports, error)
}

// NewDeviceManager creates a device manager. inputPort selects the note
// panel by name; launchpad enables Launchpad detection.
func NewDeviceManager(m Mapping, inputPort string, launchpad bool) *DeviceManager {
	return &DeviceManager{
		mapping:   m,
		inputPort: inputPort,
		launchpad: launchpad,
		panels:    make(map[string]Panel),
		events:    make(chan DeviceEvent, 16),
		pollRate:  time.Second,
		scanFn:    Scan,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Panels returns a snapshot of connected panels
func (dm *DeviceManager) Panels() map[string]Panel {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Panel, len(dm.panels))
	for k, v := range dm.panels {
		out[k] = v
	}
	return out
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	ports, err := dm.scanFn(ScanTimeout)
	if err != nil {
		debug.LogEvery(10, "midi", "scan: %v", err)
		return
	}

	dm.sync(ctx, ports.InNames(), func(name string) (Panel, error) {
		return dm.open(name, ports)
	})
}

// wants reports whether a port name is one of ours
func (dm *DeviceManager) wants(name string) bool {
	if dm.launchpad && isLaunchpad(name) {
		return true
	}
	return MatchName(name, dm.inputPort)
}

func (dm *DeviceManager) open(name string, ports Ports) (Panel, error) {
	in, err := ports.FindIn(name)
	if err != nil {
		return nil, err
	}

	if dm.launchpad && isLaunchpad(name) {
		// Launchpad output port has the same name
		var outPort drivers.Out
		for j, op := range ports.Out {
			if strings.EqualFold(op.String(), name) {
				outPort = ports.Out[j]
				break
			}
		}
		return NewLaunchpadPanel(name, in, outPort)
	}
	return NewNotePanel(name, in, dm.mapping)
}

// sync opens panels for new ports and closes the ones that went away
func (dm *DeviceManager) sync(ctx context.Context, names []string, open func(name string) (Panel, error)) {
	seen := make(map[string]bool)

	for _, name := range names {
		if !dm.wants(name) {
			continue
		}
		seen[name] = true

		dm.mu.RLock()
		_, exists := dm.panels[name]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		p, err := open(name)
		if err != nil {
			debug.Log("midi", "open %s: %v", name, err)
			continue
		}

		dm.mu.Lock()
		dm.panels[name] = p
		dm.mu.Unlock()

		debug.Log("midi", "%s connected", name)
		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Panel: p, ID: name})
	}

	dm.mu.Lock()
	var gone []string
	for id := range dm.panels {
		if !seen[id] {
			gone = append(gone, id)
		}
	}
	for _, id := range gone {
		dm.panels[id].Close()
		delete(dm.panels, id)
	}
	dm.mu.Unlock()

	for _, id := range gone {
		debug.Log("midi", "%s disconnected", id)
		dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

// emit waits for the reader, giving up when ctx is done
func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
		debug.Log("midi", "%s %s not delivered: %v", ev.ID, ev.Type, ctx.Err())
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, p := range dm.panels {
		p.Close()
	}
	dm.panels = make(map[string]Panel)
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
