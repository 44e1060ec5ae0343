package cmd

import (
	"fmt"

	"github.com/hoppxi/sysset/pkg/displayinfo"
	"github.com/hoppxi/sysset/pkg/systemsetting"
	"github.com/spf13/cobra"
)

func newBrightnessCmd(opts *options) *cobra.Command {
	var (
		set   float64
		force bool
		app   bool
		info  bool
	)

	cmd := &cobra.Command{
		Use:   "brightness",
		Short: "Get or set screen brightness (0..1)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if info {
				data, err := displayinfo.GetDisplayInfoJSON()
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
				var v float64
				if app {
					v, err = s.setting.GetAppBrightness(ctx)
				} else {
					v, err = s.setting.GetBrightness(ctx)
				}
				if err != nil {
					return err
				}
				printValue(cmd, v)
				return nil
			}

			switch {
			case app:
				return printOK(cmd, s.setting.SetAppBrightness(ctx, set))
			case force:
				return printOK(cmd, s.setting.SetBrightnessForce(ctx, set))
			default:
				return printOK(cmd, s.setting.SetBrightness(ctx, set))
			}
		},
	}

	cmd.Flags().Float64Var(&set, "set", 0, "Set brightness to this level")
	cmd.Flags().BoolVar(&force, "force", false, "Switch to manual mode before setting")
	cmd.Flags().BoolVar(&app, "app", false, "Use the app-only (software) brightness")
	cmd.Flags().BoolVar(&info, "info", false, "Output backlight info in json format")
	cmd.MarkFlagsMutuallyExclusive("force", "app")
	return cmd
}

func newScreenModeCmd(opts *options) *cobra.Command {
	var set string

	cmd := &cobra.Command{
		Use:   "screen-mode",
		Short: "Get or set the screen brightness mode (manual, automatic)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, opts, false)
			if err != nil {
				return err
			}
			defer s.Close()

			if set == "" {
				m, err := s.setting.GetScreenMode(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), m)
				return nil
			}

			m, err := systemsetting.ParseScreenMode(set)
			if err != nil {
				return err
			}
			return printOK(cmd, s.setting.SetScreenMode(ctx, m))
		},
	}

	cmd.Flags().StringVar(&set, "set", "", "Set the mode: manual or automatic")
	return cmd
}

func newPermissionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "permission",
		Short: "Show how to grant write access to the screen brightness",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, opts, false)
			if err != nil {
				return err
			}
			defer s.Close()

			if !s.setting.Capabilities().WriteSettingPrompt {
				fmt.Fprintln(cmd.OutOrStdout(), "Not needed on this platform.")
				return nil
			}
			s.setting.GrantWriteSettingPermission(ctx)
			return nil
		},
	}
}
