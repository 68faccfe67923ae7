package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"switcheroo/config"
	"switcheroo/cv"
	"switcheroo/debug"
	"switcheroo/display"
	"switcheroo/input"
	"switcheroo/midi"
	"switcheroo/selector"
	"switcheroo/switcher"
	"switcheroo/theme"
	"switcheroo/tui"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	BPM      int
	Headless bool
	NoMIDI   bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the switch",
		Long: `Run the switch with the terminal UI.

Clock, buttons and knobs come from the configured MIDI input port and/or a
Launchpad X (hot-plugged), or from the keyboard. Output voltages go to the
configured MIDI-to-CV port as controller messages.

Examples:
  switcheroo run
  switcheroo run --bpm 120
  switcheroo run --headless`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSwitch(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.BPM, "bpm", 0, "internal clock tempo (overrides config, 0 = config)")
	cmd.Flags().BoolVar(&opts.Headless, "headless", false, "no TUI, print the screen to stdout")
	cmd.Flags().BoolVar(&opts.NoMIDI, "no-midi", false, "ignore MIDI ports")

	return cmd
}

// setup is everything a running switch is made of
type setup struct {
	cfg     *config.Config
	bank    *cv.Bank
	router  *cv.Router
	manager *switcher.Manager
	input   *input.Controller
	screen  *tui.Screen
	closers []io.Closer
}

func newSetup(cfg *config.Config, rng selector.Rand) *setup {
	bank := cv.NewBank()
	router := cv.NewRouter(bank, bank)
	screen := tui.NewScreen()
	engine := selector.NewEngineWithState(cfg.InitialState(), rng)

	return &setup{
		cfg:     cfg,
		bank:    bank,
		router:  router,
		manager: switcher.NewManager(engine, router, screen),
		input:   input.NewController(cfg.LongPress(), cfg.Debounce(), input.DefaultQueueSize),
		screen:  screen,
	}
}

// openCVOutput adds the MIDI-to-CV sink when an output port is configured
func (r *setup) openCVOutput() error {
	m := r.cfg.MIDI
	if m.OutputPort == "" {
		return nil
	}

	ports, err := midi.Scan(midi.ScanTimeout)
	if err != nil {
		return err
	}
	out, err := ports.FindOut(m.OutputPort)
	if err != nil {
		return err
	}
	cvOut, err := midi.NewCVOutput(out, m.Channel-1, m.OutputCC)
	if err != nil {
		return fmt.Errorf("%s: %w", out.String(), err)
	}
	r.router.AddSink(cvOut)
	r.closers = append(r.closers, cvOut)
	debug.Log("device", "cv output on %s", out.String())
	return nil
}

func (r *setup) close() {
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			debug.Log("device", "close: %v", err)
		}
	}
}

func mapping(m config.MIDIConfig) midi.Mapping {
	return midi.Mapping{
		Channel:     m.Channel - 1,
		ClockNote:   m.ClockNote,
		Button1Note: m.Button1Note,
		Button2Note: m.Button2Note,
		AnalogCC:    m.AnalogCC,
		OffsetCC:    m.OffsetCC,
	}
}

func runSwitch(opts *RunOptions, cmd *cobra.Command) error {
	cfg := opts.Config
	r := newSetup(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
	defer r.close()

	useMIDI := !opts.NoMIDI
	if useMIDI {
		if err := r.openCVOutput(); err != nil {
			return fmt.Errorf("cv output: %w", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	go r.manager.Run(ctx, r.input.Events(), cfg.TickPeriod())

	bpm := cfg.Switch.BPM
	if opts.BPM > 0 {
		bpm = opts.BPM
	}
	if bpm > 0 {
		go input.InternalClock{BPM: bpm}.Run(ctx, r.input.Feed)
	}

	var (
		deviceMgr *midi.DeviceManager
		panels    *switcher.Rig
	)
	if useMIDI && (cfg.MIDI.InputPort != "" || cfg.MIDI.Launchpad) {
		deviceMgr = midi.NewDeviceManager(mapping(cfg.MIDI), cfg.MIDI.InputPort, cfg.MIDI.Launchpad)
		panels = switcher.NewRig(r.manager, r.router, r.input, r.bank)
		go deviceMgr.Run(ctx)
	}

	if opts.Headless {
		r.manager.AddDisplay(display.NewWriter(cmd.OutOrStdout(), "--\n"))
		if deviceMgr == nil {
			<-ctx.Done()
			return nil
		}
		for ev := range deviceMgr.Events() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ev.ID, ev.Type)
			panels.HandleDevice(ev)
		}
		return nil
	}

	model := tui.NewModel(r.manager, r.input, r.screen, r.bank, theme.New(theme.Plasma()))
	if deviceMgr != nil {
		model = model.WithDevices(panels, deviceMgr)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
