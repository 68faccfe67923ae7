// Package display renders the switch status: version, output count and mode.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"switcheroo/selector"
)

// Version is shown on the first line
const Version = "1.0"

// Frame is everything a display shows
type Frame struct {
	Version string
	Outputs int
	Mode    selector.Mode
	Active  int
}

// FrameOf builds a frame from the selection state
func FrameOf(s selector.State) Frame {
	return Frame{
		Version: Version,
		Outputs: s.Outputs,
		Mode:    s.Mode,
		Active:  s.Selected(),
	}
}

// Lines returns the three text lines of the status screen
func (f Frame) Lines() []string {
	return []string{
		fmt.Sprintf("Switcheroo v%s", f.Version),
		fmt.Sprintf("outs:%d", f.Outputs),
		fmt.Sprintf("mode:%s", f.Mode),
	}
}

// Text returns the lines joined with newlines, newline terminated
func (f Frame) Text() string {
	return strings.Join(f.Lines(), "\n") + "\n"
}

// Display is anything that can show a frame. Show is only called when the
// frame changed, from the control loop goroutine.
type Display interface {
	Show(f Frame) error
}

// Writer prints every frame to an io.Writer
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	sep string
}

// NewWriter creates a display writing to w; sep is printed between frames
func NewWriter(w io.Writer, sep string) *Writer {
	return &Writer{w: w, sep: sep}
}

func (d *Writer) Show(f Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := io.WriteString(d.w, f.Text()+d.sep); err != nil {
		return fmt.Errorf("write display: %w", err)
	}
	return nil
}

// Recorder keeps every frame shown, for tests and the simulator
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
}

func (r *Recorder) Show(f Frame) error {
	r.mu.Lock()
	r.frames = append(r.frames, f)
	r.mu.Unlock()
	return nil
}

// Frames returns a copy of the recorded frames
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

// Last returns the most recent frame
func (r *Recorder) Last() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}
