package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hoppxi/sysset/internal/manager"
	"github.com/spf13/cobra"
)

func newStartCmd(opts *options) *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the daemon that keeps saved brightness and listeners alive",
		RunE: func(cmd *cobra.Command, args []string) error {
			socket := manager.SocketPath()
			if reply, err := manager.SendIPCCommand(socket, manager.CmdStatus); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Daemon already running (%s)\n", reply)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := openSession(ctx, opts, true)
			if err != nil {
				return err
			}
			defer s.Close()

			d := manager.NewDaemon(s.setting, manager.NewConfigManager(opts.configPath), nil)
			d.SocketPath = socket
			d.HTTPAddr = s.config.HTTPAddr
			if cmd.Flags().Changed("http") {
				d.HTTPAddr = httpAddr
			}

			// Watch needs the config loaded on this manager.
			if _, err := d.Config.Load(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Daemon started. Press Ctrl+C to stop.")
			return d.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "Serve the HTTP API on this address (overrides http_addr)")
	return cmd
}
