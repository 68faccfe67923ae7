package switcher

import (
	"sync"

	"switcheroo/cv"
	"switcheroo/debug"
	"switcheroo/display"
	"switcheroo/input"
	"switcheroo/midi"
)

// Rig connects hot-plugged MIDI panels to the control loop: their edges go
// to the input controller, and whatever they can do (source, sink, display)
// is registered with the router and manager.
type Rig struct {
	Manager  *Manager
	Router   *cv.Router
	Input    *input.Controller
	Fallback cv.Source // used when the panel providing the input goes away

	mu       sync.Mutex
	attached map[string]midi.Panel
}

// NewRig creates a rig
func NewRig(m *Manager, r *cv.Router, in *input.Controller, fallback cv.Source) *Rig {
	return &Rig{
		Manager:  m,
		Router:   r,
		Input:    in,
		Fallback: fallback,
		attached: make(map[string]midi.Panel),
	}
}

// Attached returns the IDs of the connected panels
func (r *Rig) Attached() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.attached))
	for id := range r.attached {
		ids = append(ids, id)
	}
	return ids
}

// HandleDevice attaches or detaches a panel
func (r *Rig) HandleDevice(ev midi.DeviceEvent) {
	switch ev.Type {
	case midi.DeviceConnected:
		if ev.Panel != nil {
			r.Attach(ev.Panel)
		}
	case midi.DeviceDisconnected:
		r.Detach(ev.ID)
	}
}

// Attach starts forwarding the panel's edges and registers its capabilities
func (r *Rig) Attach(p midi.Panel) {
	r.mu.Lock()
	r.attached[p.ID()] = p
	r.mu.Unlock()

	if src, ok := p.(cv.Source); ok {
		r.Router.SetSource(src)
	}
	if sink, ok := p.(cv.Sink); ok {
		r.Router.AddSink(sink)
	}
	if d, ok := p.(display.Display); ok {
		r.Manager.AddDisplay(d)
	}

	go func() {
		for e := range p.Edges() {
			r.Input.Feed(e)
		}
	}()

	debug.Log("device", "attached %s", p.ID())
}

// Detach unregisters a panel that went away
func (r *Rig) Detach(id string) {
	r.mu.Lock()
	p, ok := r.attached[id]
	delete(r.attached, id)
	r.mu.Unlock()
	if !ok {
		return
	}

	if src, ok := p.(cv.Source); ok && r.Router.Source() == src {
		r.Router.SetSource(r.Fallback)
	}
	if sink, ok := p.(cv.Sink); ok {
		r.Router.RemoveSink(sink)
	}
	if d, ok := p.(display.Display); ok {
		r.Manager.RemoveDisplay(d)
	}

	debug.Log("device", "detached %s", id)
}
