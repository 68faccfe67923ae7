// Package cli holds the switcheroo commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"switcheroo/config"
	"switcheroo/debug"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Debug      bool

	Config *config.Config // loaded before any subcommand runs
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "switcheroo",
		Short: "Switcheroo - clocked sequential switch",
		Long: `Routes one analog input to one of up to six outputs, moving to the next
output on every clock pulse (forward, reverse, random or pendulum).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.Config = cfg

			if opts.Debug || cfg.Debug {
				if err := debug.Enable(debug.DefaultPath()); err != nil {
					return fmt.Errorf("enable debug log: %w", err)
				}
				debug.Log("config", "loaded %+v", *cfg)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			debug.Disable()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/switcheroo/config.json)")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "write a debug log to ~/.config/switcheroo/debug.log")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewSimCommand(opts))
	cmd.AddCommand(NewPortsCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}
