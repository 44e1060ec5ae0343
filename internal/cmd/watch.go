package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hoppxi/sysset/pkg/events"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print setting changes as JSON lines until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, opts, true)
			if err != nil {
				return err
			}
			defer s.Close()

			lines := make(chan events.Event, 32)
			forward := func(e events.Event) {
				select {
				case lines <- e:
				default:
				}
			}

			subs := []*events.Subscription{
				s.setting.AddVolumeListener(forward),
				s.setting.AddWifiListener(ctx, forward),
				s.setting.AddBluetoothListener(ctx, forward),
			}
			bus := s.setting.Bus()
			for _, t := range []events.Topic{events.TopicAirplane, events.TopicLocation, events.TopicBrightness} {
				subs = append(subs, bus.Subscribe(t, forward))
			}
			defer func() {
				for _, sub := range subs {
					s.setting.RemoveListener(sub)
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			enc := json.NewEncoder(cmd.OutOrStdout())
			for {
				select {
				case e := <-lines:
					if err := enc.Encode(e); err != nil {
						return err
					}
				case <-sigChan:
					fmt.Fprintln(cmd.ErrOrStderr())
					return nil
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
}
