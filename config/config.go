package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"switcheroo/selector"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

// MIDIConfig maps the hardware signals onto MIDI messages
type MIDIConfig struct {
	InputPort  string `json:"inputPort,omitempty" env:"INPUT_PORT"`   // clock, buttons and knobs come in here
	OutputPort string `json:"outputPort,omitempty" env:"OUTPUT_PORT"` // MIDI-to-CV interface
	Channel    uint8  `json:"channel" env:"CHANNEL"`                  // 1-16

	ClockNote   uint8 `json:"clockNote" env:"CLOCK_NOTE"`
	Button1Note uint8 `json:"button1Note" env:"BUTTON1_NOTE"`
	Button2Note uint8 `json:"button2Note" env:"BUTTON2_NOTE"`

	AnalogCC uint8 `json:"analogCC" env:"ANALOG_CC"`
	OffsetCC uint8 `json:"offsetCC" env:"OFFSET_CC"`
	OutputCC []int `json:"outputCC" env:"OUTPUT_CC" envSeparator:","` // one per output

	Launchpad bool `json:"launchpad" env:"LAUNCHPAD"` // use a Launchpad X for buttons and indicator
}

// SwitchConfig holds the switch behaviour
type SwitchConfig struct {
	Outputs     int    `json:"outputs" env:"OUTPUTS"`
	Mode        string `json:"mode" env:"MODE"`
	LongPressMs int    `json:"longPressMs" env:"LONG_PRESS_MS"`
	DebounceMs  int    `json:"debounceMs" env:"DEBOUNCE_MS"`
	LoopHz      int    `json:"loopHz" env:"LOOP_HZ"`
	BPM         int    `json:"bpm,omitempty" env:"BPM"` // internal clock, 0 = external
}

// Config is the main configuration structure
type Config struct {
	MIDI   MIDIConfig   `json:"midi" envPrefix:"MIDI_"`
	Switch SwitchConfig `json:"switch"`
	Debug  bool         `json:"debug,omitempty" env:"DEBUG"`
}

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "SWITCHEROO_"

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MIDI: MIDIConfig{
			Channel:     1,
			ClockNote:   36,
			Button1Note: 37,
			Button2Note: 38,
			AnalogCC:    20,
			OffsetCC:    21,
			OutputCC:    []int{70, 71, 72, 73, 74, 75},
		},
		Switch: SwitchConfig{
			Outputs:     selector.DefaultOutputs,
			Mode:        selector.ModeForward.String(),
			LongPressMs: 300,
			DebounceMs:  25,
			LoopHz:      1000,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "switcheroo"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from path (ConfigPath when empty), falling back to
// defaults if the file does not exist, then applies SWITCHEROO_* environment
// overrides and validates the result
func Load(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Unset fields keep their defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path (ConfigPath when empty)
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks every field is in range
func (c *Config) Validate() error {
	m := c.MIDI
	if m.Channel < 1 || m.Channel > 16 {
		return fmt.Errorf("%w: midi channel %d not in 1-16", ErrInvalid, m.Channel)
	}
	for name, v := range map[string]uint8{
		"clockNote": m.ClockNote, "button1Note": m.Button1Note, "button2Note": m.Button2Note,
		"analogCC": m.AnalogCC, "offsetCC": m.OffsetCC,
	} {
		if v > 127 {
			return fmt.Errorf("%w: %s %d not in 0-127", ErrInvalid, name, v)
		}
	}
	if m.ClockNote == m.Button1Note || m.ClockNote == m.Button2Note || m.Button1Note == m.Button2Note {
		return fmt.Errorf("%w: clock and button notes must differ", ErrInvalid)
	}
	if len(m.OutputCC) != 6 {
		return fmt.Errorf("%w: need 6 output CCs, got %d", ErrInvalid, len(m.OutputCC))
	}
	for i, cc := range m.OutputCC {
		if cc < 0 || cc > 127 {
			return fmt.Errorf("%w: output %d CC %d not in 0-127", ErrInvalid, i+1, cc)
		}
	}

	s := c.Switch
	if s.Outputs < selector.MinOutputs || s.Outputs > selector.MaxOutputs {
		return fmt.Errorf("%w: outputs %d not in %d-%d", ErrInvalid, s.Outputs, selector.MinOutputs, selector.MaxOutputs)
	}
	if _, err := selector.ParseMode(s.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if s.LongPressMs <= 0 {
		return fmt.Errorf("%w: longPressMs must be positive", ErrInvalid)
	}
	if s.DebounceMs < 0 || s.DebounceMs >= s.LongPressMs {
		return fmt.Errorf("%w: debounceMs must be in 0-%d", ErrInvalid, s.LongPressMs-1)
	}
	if s.LoopHz <= 0 || s.LoopHz > 10000 {
		return fmt.Errorf("%w: loopHz %d not in 1-10000", ErrInvalid, s.LoopHz)
	}
	if s.BPM < 0 || s.BPM > 1000 {
		return fmt.Errorf("%w: bpm %d not in 0-1000", ErrInvalid, s.BPM)
	}
	return nil
}

// InitialState is the selection state at startup
func (c *Config) InitialState() selector.State {
	s := selector.NewState()
	s.Outputs = c.Switch.Outputs
	if mode, err := selector.ParseMode(c.Switch.Mode); err == nil {
		s.Mode = mode
	}
	return s
}

// LongPress returns the long press threshold
func (c *Config) LongPress() time.Duration {
	return time.Duration(c.Switch.LongPressMs) * time.Millisecond
}

// Debounce returns the button debounce window
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Switch.DebounceMs) * time.Millisecond
}

// TickPeriod returns the control loop period
func (c *Config) TickPeriod() time.Duration {
	return time.Second / time.Duration(max(c.Switch.LoopHz, 1))
}
