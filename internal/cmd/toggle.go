package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/hoppxi/sysset/pkg/btinfo"
	"github.com/hoppxi/sysset/pkg/netinfo"
	"github.com/hoppxi/sysset/pkg/systemsetting"
	"github.com/spf13/cobra"
)

type switchFunc func(*systemsetting.Setting, context.Context, func()) <-chan struct{}

// toggleSpec describes one on/off setting command.
type toggleSpec struct {
	name   string
	short  string
	get    func(*systemsetting.Setting, context.Context) (bool, error)
	flip   switchFunc
	silent switchFunc
	info   func() ([]byte, error)
}

var toggleSpecs = []toggleSpec{
	{
		name:   "wifi",
		short:  "Get or switch Wi-Fi",
		get:    (*systemsetting.Setting).IsWifiEnabled,
		flip:   (*systemsetting.Setting).SwitchWifi,
		silent: (*systemsetting.Setting).SwitchWifiSilence,
		info:   netinfo.GetNetworkInfoJSON,
	},
	{
		name:   "bluetooth",
		short:  "Get or switch Bluetooth",
		get:    (*systemsetting.Setting).IsBluetoothEnabled,
		flip:   (*systemsetting.Setting).SwitchBluetooth,
		silent: (*systemsetting.Setting).SwitchBluetoothSilence,
		info:   btinfo.GetBluetoothInfoJSON,
	},
	{
		name:  "location",
		short: "Get or switch location services",
		get:   (*systemsetting.Setting).IsLocationEnabled,
		flip:  (*systemsetting.Setting).SwitchLocation,
	},
	{
		name:  "airplane",
		short: "Get or switch airplane mode",
		get:   (*systemsetting.Setting).IsAirplaneEnabled,
		flip:  (*systemsetting.Setting).SwitchAirplane,
	},
}

func newToggleCmd(opts *options, t toggleSpec) *cobra.Command {
	var (
		doSwitch bool
		silent   bool
		wait     time.Duration
		info     bool
	)

	cmd := &cobra.Command{
		Use:   t.name,
		Short: t.short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if info {
				data, err := t.info()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			ctx := cmd.Context()
			// A switch starts the one watcher it completes on.
			s, err := openSession(ctx, opts, false)
			if err != nil {
				return err
			}
			defer s.Close()

			if !doSwitch {
				on, err := t.get(s.setting, ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), on)
				return nil
			}

			flip := t.flip
			if silent {
				flip = t.silent
			}
			done := flip(s.setting, ctx, nil)

			if wait <= 0 {
				// The request runs in the background and dies with the
				// process, so let it reach the host first.
				if err := s.setting.WaitIssued(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "requested")
				return nil
			}

			select {
			case <-done:
				fmt.Fprintln(cmd.OutOrStdout(), "switched")
				return nil
			case <-time.After(wait):
				return fmt.Errorf("%s did not change within %s", t.name, wait)
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}

	cmd.Flags().BoolVar(&doSwitch, "switch", false, "Flip the setting")
	if t.silent != nil {
		cmd.Flags().BoolVar(&silent, "silent", false, "Flip without asking")
	}
	cmd.Flags().DurationVar(&wait, "wait", 30*time.Second, "With --switch, wait this long for the change; 0 returns once the host has taken the request")
	if t.info != nil {
		cmd.Flags().BoolVar(&info, "info", false, "Output detailed info in json format")
	}
	return cmd
}
