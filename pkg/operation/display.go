package operation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hoppxi/sysset/pkg/displayinfo"
)

type display struct {
	// Root is the backlight class directory.
	Root string
}

// Display is the exported instance.
var Display = &display{Root: displayinfo.DefaultRoot}

const (
	powerSchema   = "org.gnome.settings-daemon.plugins.power"
	ambientKey    = "ambient-enabled"
	brightnessCtl = "brightnessctl"
)

// SetBrightness sets the backlight of device (first device when empty) to
// val in 0..1. It writes sysfs directly and falls back to brightnessctl,
// which can go through logind when sysfs is not writable.
func (d *display) SetBrightness(ctx context.Context, device string, val float64) error {
	val = clamp01(val)

	info, err := displayinfo.GetDisplayInfoAt(d.Root, device)
	if err != nil {
		return err
	}

	raw := int(math.Round(val * float64(info.Max)))
	path := filepath.Join(d.Root, info.Device, "brightness")
	werr := os.WriteFile(path, []byte(strconv.Itoa(raw)), 0o644)
	if werr == nil {
		return nil
	}

	cmd := exec.CommandContext(ctx, brightnessCtl, "-d", info.Device, "set", strconv.Itoa(raw))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to set brightness: %w", errors.Join(werr, err))
	}
	return nil
}

// AutoBrightness reports whether ambient-light brightness is enabled.
func (d *display) AutoBrightness(ctx context.Context) (bool, error) {
	return gsettingsGetBool(ctx, powerSchema, ambientKey)
}

// SetAutoBrightness enables or disables ambient-light brightness.
func (d *display) SetAutoBrightness(ctx context.Context, on bool) error {
	if err := gsettingsSet(ctx, powerSchema, ambientKey, strconv.FormatBool(on)); err != nil {
		return fmt.Errorf("failed to set screen mode: %w", err)
	}
	return nil
}

// SetAppBrightness sets the software brightness of an output in 0..1.
// An empty output means the primary monitor. Only what is drawn on that
// output changes; the backlight is left alone.
func (d *display) SetAppBrightness(ctx context.Context, output string, val float64) error {
	if output == "" {
		var err error
		if output, err = primaryOutput(ctx); err != nil {
			return err
		}
	}

	arg := strconv.FormatFloat(clamp01(val), 'f', 2, 64)
	if err := exec.CommandContext(ctx, "xrandr", "--output", output, "--brightness", arg).Run(); err != nil {
		return fmt.Errorf("failed to set brightness of %s: %w", output, err)
	}
	return nil
}

// AppBrightness returns the software brightness of an output.
func (d *display) AppBrightness(ctx context.Context, output string) (float64, error) {
	if output == "" {
		var err error
		if output, err = primaryOutput(ctx); err != nil {
			return 0, err
		}
	}

	out, err := exec.CommandContext(ctx, "xrandr", "--verbose").Output()
	if err != nil {
		return 0, fmt.Errorf("xrandr failed: %w", err)
	}
	return parseOutputBrightness(string(out), output)
}

func primaryOutput(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "xrandr", "--listactivemonitors").Output()
	if err != nil {
		return "", fmt.Errorf("xrandr failed: %w", err)
	}
	return parsePrimaryMonitor(string(out))
}

// parsePrimaryMonitor picks the output marked with '*' in the output of
// `xrandr --listactivemonitors`, or the first one listed.
//
//	Monitors: 2
//	 0: +*eDP-1 1920/344x1080/193+0+0  eDP-1
//	 1: +HDMI-1 2560/597x1440/336+1920+0  HDMI-1
func parsePrimaryMonitor(out string) (string, error) {
	first := ""
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 || !strings.HasSuffix(fields[0], ":") {
			continue
		}
		name := fields[len(fields)-1]
		if strings.Contains(fields[1], "*") {
			return name, nil
		}
		if first == "" {
			first = name
		}
	}
	if first == "" {
		return "", errors.New("no active monitors")
	}
	return first, nil
}

// parseOutputBrightness reads the Brightness line under output in the
// output of `xrandr --verbose`.
func parseOutputBrightness(out, output string) (float64, error) {
	inOutput := false
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			inOutput = strings.HasPrefix(line, output+" ")
			continue
		}
		if !inOutput {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(trimmed, "Brightness:"); ok {
			return strconv.ParseFloat(strings.TrimSpace(v), 64)
		}
	}
	return 0, fmt.Errorf("no brightness reported for output %s", output)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
