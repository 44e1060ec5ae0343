package cmd

import (
	"fmt"

	"github.com/hoppxi/sysset/pkg/audioinfo"
	"github.com/hoppxi/sysset/pkg/systemsetting"
	"github.com/spf13/cobra"
)

func newVolumeCmd(opts *options) *cobra.Command {
	var (
		set  float64
		typ  string
		cfg  systemsetting.VolumeConfig
		info bool
	)

	cmd := &cobra.Command{
		Use:   "volume",
		Short: "Get or set a volume channel (0..1)",
		Long:  "Channels: music, call, system, ring, alarm, notification. Call maps to the default input, everything else to the default output.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if info {
				data, err := audioinfo.GetAudioInfoJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			ctx := cmd.Context()
			s, err := openSession(ctx, opts, false)
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("set") {
				v, err := s.setting.GetVolume(ctx, systemsetting.VolumeType(typ))
				if err != nil {
					return err
				}
				printValue(cmd, v)
				return nil
			}

			cfg.Type = systemsetting.VolumeType(typ)
			return printOK(cmd, s.setting.SetVolume(ctx, set, cfg))
		},
	}

	cmd.Flags().Float64Var(&set, "set", 0, "Set the channel to this level")
	cmd.Flags().StringVar(&typ, "type", string(systemsetting.VolumeMusic), "Volume channel")
	cmd.Flags().BoolVar(&cfg.PlaySound, "play-sound", false, "Play the volume-change sound")
	cmd.Flags().BoolVar(&cfg.ShowUI, "show-ui", false, "Show the volume OSD")
	cmd.Flags().BoolVar(&info, "info", false, "Output all current audio info in json format")
	return cmd
}
