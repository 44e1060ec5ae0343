package operation

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// audio represents the audio subsystem.
type audio struct{}

// Audio is the exported instance.
var Audio audio

// SetOutputLevel sets the default sink volume in percent.
func (a *audio) SetOutputLevel(ctx context.Context, lvl int) error {
	return setDeviceVolume(ctx, true, lvl)
}

// SetInputLevel sets the default source volume in percent.
func (a *audio) SetInputLevel(ctx context.Context, lvl int) error {
	return setDeviceVolume(ctx, false, lvl)
}

// PlayFeedback plays the desktop's volume-change sound.
func (a *audio) PlayFeedback(ctx context.Context) error {
	if err := exec.CommandContext(ctx, "canberra-gtk-play", "-i", "audio-volume-change").Run(); err == nil {
		return nil
	}
	if err := exec.CommandContext(ctx, "paplay", "/usr/share/sounds/freedesktop/stereo/audio-volume-change.oga").Run(); err != nil {
		return fmt.Errorf("failed to play feedback sound: %w", err)
	}
	return nil
}

// --- Internal Logic (pactl) ---

func setDeviceVolume(ctx context.Context, isOutput bool, lvl int) error {
	if lvl < 0 {
		lvl = 0
	}
	if lvl > 100 {
		lvl = 100
	}

	deviceType := deviceTypeOf(isOutput)
	device, err := getDefaultDevice(ctx, deviceType)
	if err != nil {
		return err
	}

	volArg := strconv.Itoa(lvl) + "%"
	cmd := exec.CommandContext(ctx, "pactl", "set-"+deviceType+"-volume", device, volArg)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	// If volume > 0, unmute
	if lvl > 0 {
		_ = setDeviceMute(ctx, isOutput, false)
	}

	return nil
}

func setDeviceMute(ctx context.Context, isOutput bool, mute bool) error {
	deviceType := deviceTypeOf(isOutput)
	device, err := getDefaultDevice(ctx, deviceType)
	if err != nil {
		return err
	}

	muteArg := "0"
	if mute {
		muteArg = "1"
	}

	cmd := exec.CommandContext(ctx, "pactl", "set-"+deviceType+"-mute", device, muteArg)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to set mute: %w", err)
	}
	return nil
}

func deviceTypeOf(isOutput bool) string {
	if isOutput {
		return "sink"
	}
	return "source"
}

func getDefaultDevice(ctx context.Context, deviceType string) (string, error) {
	cmd := exec.CommandContext(ctx, "pactl", "get-default-"+deviceType)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get default %s: %w", deviceType, err)
	}
	return strings.TrimSpace(string(out)), nil
}
