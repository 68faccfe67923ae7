// Command miditest pokes at MIDI hardware without running the switch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"

	"switcheroo/cv"
	"switcheroo/midi"
)

func main() {
	root := &cobra.Command{
		Use:          "miditest",
		Short:        "MIDI test scripts",
		SilenceUsage: true,
	}
	root.AddCommand(listCommand(), watchCommand(), sweepCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func scan() (midi.Ports, error) {
	fmt.Printf("(waiting up to %s...)\n", midi.ScanTimeout)
	ports, err := midi.Scan(midi.ScanTimeout)
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return ports, err
	}
	return ports, nil
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all MIDI ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := scan()
			if err != nil {
				return err
			}
			fmt.Println("=== MIDI Input Ports ===")
			for i, name := range ports.InNames() {
				fmt.Printf("  %d: %s\n", i, name)
			}
			fmt.Println("\n=== MIDI Output Ports ===")
			for i, name := range ports.OutNames() {
				fmt.Printf("  %d: %s\n", i, name)
			}
			return nil
		},
	}
}

func watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <input port>",
		Short: "Print every message arriving on an input port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := scan()
			if err != nil {
				return err
			}
			in, err := ports.FindIn(args[0])
			if err != nil {
				return err
			}

			start := time.Now()
			stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
				fmt.Printf("[%8.3fs] %s\n", time.Since(start).Seconds(), msg)
			})
			if err != nil {
				return fmt.Errorf("open %s: %w", in.String(), err)
			}
			defer stop()

			fmt.Printf("Watching %s. Ctrl+C to exit.\n", in.String())
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			<-ctx.Done()
			return nil
		},
	}
}

func sweepCommand() *cobra.Command {
	var (
		channel uint8
		firstCC uint8
		dwell   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sweep <output port>",
		Short: "Step each CV output through 0, 5 and 10V",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if channel < 1 || channel > 16 {
				return fmt.Errorf("channel %d not in 1-16", channel)
			}
			ports, err := scan()
			if err != nil {
				return err
			}
			out, err := ports.FindOut(args[0])
			if err != nil {
				return err
			}

			ccs := make([]int, cv.NumOutputs)
			for i := range ccs {
				ccs[i] = int(firstCC) + i
			}
			o, err := midi.NewCVOutput(out, channel-1, ccs)
			if err != nil {
				return err
			}
			defer o.Close()

			for ch := 0; ch < cv.NumOutputs; ch++ {
				for _, v := range []float64{0, 5, 10, 0} {
					fmt.Printf("output %d (CC %d): %4.1fV\n", ch+1, ccs[ch], v)
					if err := o.SetVoltage(ch, v); err != nil {
						return err
					}
					time.Sleep(dwell)
				}
			}
			fmt.Println("Done!")
			return nil
		},
	}

	cmd.Flags().Uint8Var(&channel, "channel", 1, "MIDI channel 1-16")
	cmd.Flags().Uint8Var(&firstCC, "cc", 70, "controller of output 1, the rest follow")
	cmd.Flags().DurationVar(&dwell, "dwell", 500*time.Millisecond, "time at each level")

	return cmd
}
