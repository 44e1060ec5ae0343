// Package provider implements systemsetting.Provider on a Linux desktop.
//
// Native is the full variant: it reads and writes the backlight, volume,
// radios and location services directly and publishes change topics from
// host event sources. Sandboxed is the variant used inside a flatpak-like
// sandbox, where radios can only be changed through the desktop settings
// panel and completion is signalled by the panel closing.
package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hoppxi/sysset/pkg/events"
	"github.com/hoppxi/sysset/pkg/systemsetting"
)

// Platform names accepted by Config.Platform.
const (
	PlatformAuto      = "auto"
	PlatformNative    = "native"
	PlatformSandboxed = "sandboxed"
)

// Settings panel names, the keys of Config.SettingsCommand.
const (
	PanelWifi      = "wifi"
	PanelBluetooth = "bluetooth"
	PanelLocation  = "location"
	PanelAirplane  = "airplane"
)

var (
	NativeCapabilities = systemsetting.Capabilities{
		Platform:            PlatformNative,
		ScreenMode:          true,
		AppBrightness:       true,
		WriteSettingPrompt:  true,
		SilentToggle:        true,
		ChangeNotifications: true,
		WifiListener:        true,
	}

	SandboxedCapabilities = systemsetting.Capabilities{
		Platform:     PlatformSandboxed,
		GatedToggles: true,
	}
)

// Config selects and configures a provider.
type Config struct {
	// Platform is native, sandboxed or auto.
	Platform string
	// Backlight is the device under /sys/class/backlight; empty picks the
	// first one.
	Backlight string
	// Output is the xrandr output for app brightness; empty picks the
	// primary monitor.
	Output string
	// SettingsCommand maps a panel name to the command line that opens it.
	SettingsCommand map[string]string
	// ConfirmToggles makes native confirming switches ask the user first.
	ConfirmToggles bool
	// LocationInterval is how often location services are polled.
	LocationInterval time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Platform: PlatformAuto,
		SettingsCommand: map[string]string{
			PanelWifi:      "gnome-control-center wifi",
			PanelBluetooth: "gnome-control-center bluetooth",
			PanelLocation:  "gnome-control-center location",
			PanelAirplane:  "gnome-control-center wifi",
		},
		ConfirmToggles:   true,
		LocationInterval: 2 * time.Second,
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// settingsCommand returns the argv opening panel, falling back to the
// default command.
func (c Config) settingsCommand(panel string) []string {
	if line, ok := c.SettingsCommand[panel]; ok && strings.TrimSpace(line) != "" {
		return strings.Fields(line)
	}
	return strings.Fields(DefaultConfig().SettingsCommand[panel])
}

func (c Config) locationInterval() time.Duration {
	if c.LocationInterval <= 0 {
		return DefaultConfig().LocationInterval
	}
	return c.LocationInterval
}

// flatpakInfo exists in every flatpak sandbox.
var flatpakInfo = "/.flatpak-info"

// Detect resolves a Config.Platform value to native or sandboxed.
func Detect(platform string) (string, error) {
	switch platform {
	case PlatformNative, PlatformSandboxed:
		return platform, nil
	case "", PlatformAuto:
		if os.Getenv("FLATPAK_ID") != "" {
			return PlatformSandboxed, nil
		}
		if _, err := os.Stat(flatpakInfo); err == nil {
			return PlatformSandboxed, nil
		}
		return PlatformNative, nil
	}
	return "", fmt.Errorf("unknown platform %q", platform)
}

// Select picks the provider variant for cfg without starting any watcher.
// Changes are published on bus.
func Select(cfg Config, bus *events.Bus) (systemsetting.Provider, error) {
	platform, err := Detect(cfg.Platform)
	if err != nil {
		return nil, err
	}

	cfg.logger().Debug("selected settings provider", "platform", platform)

	if platform == PlatformSandboxed {
		return NewSandboxed(cfg, bus), nil
	}
	return NewNative(cfg, bus), nil
}

// New is Select followed by starting the native variant's watchers. Close
// the provider through io.Closer when done.
func New(ctx context.Context, cfg Config, bus *events.Bus) (systemsetting.Provider, error) {
	p, err := Select(cfg, bus)
	if err != nil {
		return nil, err
	}
	if n, ok := p.(*Native); ok {
		n.Start(ctx)
	}
	return p, nil
}

var (
	_ systemsetting.Provider = (*Native)(nil)
	_ systemsetting.Provider = (*Sandboxed)(nil)
	_ io.Closer              = (*Native)(nil)
	_ io.Closer              = (*Sandboxed)(nil)
)
