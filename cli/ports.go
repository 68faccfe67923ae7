package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"switcheroo/midi"
)

// NewPortsCommand creates the ports command.
func NewPortsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List MIDI ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := midi.Scan(midi.ScanTimeout)
			if err != nil {
				return fmt.Errorf("%w (fix: sudo killall coreaudiod midiserver)", err)
			}

			w := cmd.OutOrStdout()
			m := rootOpts.Config.MIDI

			fmt.Fprintln(w, "=== MIDI Input Ports ===")
			for i, name := range ports.InNames() {
				fmt.Fprintf(w, "  %d: %s%s\n", i, name, marker(name, m.InputPort, m.Launchpad))
			}
			fmt.Fprintln(w, "\n=== MIDI Output Ports ===")
			for i, name := range ports.OutNames() {
				fmt.Fprintf(w, "  %d: %s%s\n", i, name, marker(name, m.OutputPort, false))
			}
			return nil
		},
	}
}

func marker(name, configured string, launchpad bool) string {
	if midi.MatchName(name, configured) {
		return "  <- configured"
	}
	if launchpad && midi.MatchName(name, "launchpad") && midi.MatchName(name, "midi") {
		return "  <- launchpad"
	}
	return ""
}
