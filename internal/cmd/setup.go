package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hoppxi/sysset/internal/manager"
	"github.com/hoppxi/sysset/pkg/provider"
	"github.com/spf13/cobra"
)

func newSetupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Write sysset.yaml interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cm := manager.NewConfigManager(opts.configPath)
			path, err := cm.Path()
			if err != nil {
				return err
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(out, "Warning: config already exists at %s\n", path)
				if !confirm(reader, out, "Overwrite it?", false) {
					return nil
				}
			}

			conf := manager.DefaultConfig()
			conf.Platform = prompt(reader, out, "Platform (auto, native, sandboxed)", conf.Platform)
			if _, err := provider.Detect(conf.Platform); err != nil {
				return err
			}
			conf.Backlight = prompt(reader, out, "Backlight device (empty for the first one)", "")
			conf.Output = prompt(reader, out, "Output for app brightness (empty for the primary)", "")
			conf.ConfirmToggles = confirm(reader, out, "Ask before switching radios?", conf.ConfirmToggles)
			if store := prompt(reader, out, "Distributed through an app store (yes, no, unset)", "unset"); store != "unset" {
				b, err := strconv.ParseBool(yesNo(store))
				if err != nil {
					return fmt.Errorf("invalid answer %q", store)
				}
				conf.AppStore = &b
			}
			conf.HTTPAddr = prompt(reader, out, "HTTP API address (empty to disable)", "")

			if err := cm.Save(conf); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nConfig written to %s\n", path)
			return nil
		},
	}
}

func prompt(r *bufio.Reader, w io.Writer, label, defaultValue string) string {
	fmt.Fprintf(w, "%s [%s]: ", label, defaultValue)
	input, _ := r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue
	}
	return input
}

// confirm asks a yes/no question. An empty answer picks defaultYes.
func confirm(r *bufio.Reader, w io.Writer, message string, defaultYes bool) bool {
	choices := "y/N"
	if defaultYes {
		choices = "Y/n"
	}
	fmt.Fprintf(w, "%s (%s): ", message, choices)
	input, _ := r.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	}
	return defaultYes
}

func yesNo(s string) string {
	switch strings.ToLower(s) {
	case "y", "yes":
		return "true"
	case "n", "no":
		return "false"
	}
	return s
}
