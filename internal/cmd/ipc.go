package cmd

import (
	"fmt"

	"github.com/hoppxi/sysset/internal/manager"
	"github.com/spf13/cobra"
)

// sendIPC sends command to the running daemon and prints the payload.
func sendIPC(cmd *cobra.Command, command string) error {
	reply, err := manager.SendIPCCommand(manager.SocketPath(), command)
	if err != nil {
		return fmt.Errorf("%w (is the daemon running? try `sysset start`)", err)
	}
	payload, err := manager.ParseReply(reply)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), payload)
	return nil
}

func newKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendIPC(cmd, manager.CmdStop)
		},
	}
}

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the current brightness and screen mode in the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendIPC(cmd, manager.CmdSave)
		},
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore the brightness saved in the daemon; prints -1 if nothing was saved",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendIPC(cmd, manager.CmdRestore)
		},
	}
}
