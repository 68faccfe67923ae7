package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Script is a recorded run: the knob positions and the events to replay.
// Expect, when present, describes where the run must end up.
type Script struct {
	Name   string   `yaml:"name"`
	Input  float64  `yaml:"input"`  // analog input, volts
	Offset float64  `yaml:"offset"` // offset knob position, 0..1
	Seed   int64    `yaml:"seed,omitempty"`
	Start  *Start   `yaml:"start,omitempty"`
	Events []string `yaml:"events"`
	Expect *Expect  `yaml:"expect,omitempty"`
}

// Start overrides the power-on selection state
type Start struct {
	Mode      string `yaml:"mode"`
	Active    int    `yaml:"active"`
	Outputs   int    `yaml:"outputs"`
	Ascending *bool  `yaml:"ascending,omitempty"`
}

// Expect is checked after the events have been applied
type Expect struct {
	Sequence  []int     `yaml:"sequence,omitempty"` // active output after each clock edge
	Mode      string    `yaml:"mode,omitempty"`
	Active    *int      `yaml:"active,omitempty"`
	Outputs   *int      `yaml:"outputs,omitempty"`
	Ascending *bool     `yaml:"ascending,omitempty"`
	Levels    []float64 `yaml:"levels,omitempty"`
}

// ParsedEvents resolves the event names
func (s *Script) ParsedEvents() ([]Event, error) {
	events := make([]Event, 0, len(s.Events))
	for i, name := range s.Events {
		ev, err := ParseEvent(name)
		if err != nil {
			return nil, fmt.Errorf("script %q event %d: %w", s.Name, i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// LoadScripts reads one or more YAML documents from path
func LoadScripts(path string) ([]Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	scripts, err := ParseScripts(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scripts, nil
}

// ParseScripts decodes a multi-document YAML stream of scripts
func ParseScripts(data []byte) ([]Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var scripts []Script
	for {
		var s Script
		err := dec.Decode(&s)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parse script: %w", err)
		}
		if _, err := s.ParsedEvents(); err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}
