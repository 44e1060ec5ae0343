package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var Version = "0.1.0"

// options are the persistent flags shared by every command.
type options struct {
	mock       bool
	debug      bool
	configPath string
}

// NewRootCmd builds the sysset command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "sysset",
		Version:       Version,
		Short:         "Read and change system settings",
		Long:          "sysset reads and changes screen brightness, volume, radios and location services through one API, and runs a daemon that keeps saved state and change listeners alive.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.debug {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.mock, "mock", false, "Use an in-memory provider instead of the host")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/sysset/sysset.yaml)")

	rootCmd.AddCommand(newBrightnessCmd(opts))
	rootCmd.AddCommand(newScreenModeCmd(opts))
	rootCmd.AddCommand(newPermissionCmd(opts))
	rootCmd.AddCommand(newVolumeCmd(opts))
	for _, t := range toggleSpecs {
		rootCmd.AddCommand(newToggleCmd(opts, t))
	}
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newStartCmd(opts))
	rootCmd.AddCommand(newKillCmd())
	rootCmd.AddCommand(newSaveCmd())
	rootCmd.AddCommand(newRestoreCmd())
	rootCmd.AddCommand(newSetupCmd(opts))

	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
