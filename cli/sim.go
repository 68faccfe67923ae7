package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"switcheroo/input"
	"switcheroo/switcher"
)

// SimOptions holds flags for the sim command.
type SimOptions struct {
	*RootOptions
	Script  string
	Mode    string
	Outputs int
	Steps   int
	Seed    int64
	Input   float64
	Offset  float64
	Events  string
	Frames  bool
}

// NewSimCommand creates the sim command.
func NewSimCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run the switch headless against scripted events",
		Long: `Run the selection engine without hardware.

With --script, every scenario in the YAML file is replayed and checked against
its expectations. Otherwise a single run is built from the flags: --steps clock
pulses, or the comma separated --events (clock, clock-off, b1, b1-long, b2,
b2-long).

Examples:
  switcheroo sim --mode pnd --outputs 4 --steps 8
  switcheroo sim --events clock,clock,b1-long,clock
  switcheroo sim --script scenarios.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Script != "" {
				return runScripts(opts, cmd.OutOrStdout())
			}
			return runSim(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Script, "script", "", "YAML scenario file")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "start mode (fwd|rev|rnd|pnd, default from config)")
	cmd.Flags().IntVar(&opts.Outputs, "outputs", 0, "start output count (default from config)")
	cmd.Flags().IntVar(&opts.Steps, "steps", 8, "clock pulses to apply")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&opts.Input, "input", 5, "analog input voltage")
	cmd.Flags().Float64Var(&opts.Offset, "offset", 0, "offset knob position 0..1")
	cmd.Flags().StringVar(&opts.Events, "events", "", "comma separated events instead of --steps")
	cmd.Flags().BoolVar(&opts.Frames, "frames", false, "print every screen refresh")

	return cmd
}

func runScripts(opts *SimOptions, w io.Writer) error {
	scripts, err := input.LoadScripts(opts.Script)
	if err != nil {
		return err
	}

	failed := 0
	for _, s := range scripts {
		res, err := switcher.RunScript(s)
		if err == nil {
			err = switcher.Check(s, res)
		}
		if err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", s.Name, err)
			continue
		}
		fmt.Fprintf(w, "ok   %s %v\n", s.Name, res.Sequence)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(scripts))
	}
	return nil
}

func runSim(opts *SimOptions, w io.Writer) error {
	cfg := opts.Config
	start := cfg.InitialState()

	s := input.Script{
		Name:   "sim",
		Input:  opts.Input,
		Offset: opts.Offset,
		Seed:   opts.Seed,
		Start: &input.Start{
			Mode:    start.Mode.String(),
			Outputs: start.Outputs,
		},
	}
	if opts.Mode != "" {
		s.Start.Mode = opts.Mode
	}
	if opts.Outputs != 0 {
		s.Start.Outputs = opts.Outputs
	}

	if opts.Events != "" {
		for _, name := range strings.Split(opts.Events, ",") {
			s.Events = append(s.Events, strings.TrimSpace(name))
		}
	} else {
		for i := 0; i < opts.Steps; i++ {
			s.Events = append(s.Events, input.ClockRising.String(), input.ClockFalling.String())
		}
	}

	res, err := switcher.RunScript(s)
	if err != nil {
		return err
	}

	if opts.Frames {
		for _, f := range res.Frames {
			fmt.Fprint(w, f.Text())
			fmt.Fprintln(w, "--")
		}
	}

	fmt.Fprintf(w, "sequence: %s\n", joinInts(res.Sequence))
	fmt.Fprintf(w, "final:    %s\n", res.Final)
	fmt.Fprintf(w, "levels:  ")
	for _, v := range res.Levels {
		fmt.Fprintf(w, " %.2f", v)
	}
	fmt.Fprintln(w)
	return nil
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, " ")
}
