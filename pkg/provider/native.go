package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/hoppxi/sysset/internal/watchers"
	"github.com/hoppxi/sysset/pkg/events"
	"github.com/hoppxi/sysset/pkg/operation"
	"github.com/hoppxi/sysset/pkg/systemsetting"
)

const writeSettingHelp = `Changing the screen brightness needs write access to /sys/class/backlight.

Add yourself to the "video" group, or install a udev rule such as:

ACTION=="add", SUBSYSTEM=="backlight", RUN+="/bin/chgrp video /sys/class/backlight/%k/brightness", RUN+="/bin/chmod g+w /sys/class/backlight/%k/brightness"

then log out and back in.`

// ErrHardwareBlocked is returned when a radio is held off by a hardware
// kill switch.
var ErrHardwareBlocked = errors.New("blocked by a hardware switch")

// Native controls the host directly.
type Native struct {
	base
}

// NewNative creates a native provider. No watcher runs until Start,
// ActiveListener or a switch needs one.
func NewNative(cfg Config, bus *events.Bus) *Native {
	return &Native{base: newBase(cfg, bus)}
}

// Start launches every change watcher so that listeners see host changes
// from the outset.
func (n *Native) Start(ctx context.Context) {
	for _, name := range []string{
		watchers.NameVolume,
		watchers.NameBrightness,
		watchers.NameNetwork,
		watchers.NameBluetooth,
		watchers.NameLocation,
	} {
		n.ensure(name)
	}
}

func (n *Native) Capabilities() systemsetting.Capabilities {
	return NativeCapabilities
}

func (n *Native) GetAppBrightness(ctx context.Context) (float64, error) {
	return operation.Display.AppBrightness(ctx, n.cfg.Output)
}

func (n *Native) SetAppBrightness(ctx context.Context, val float64) error {
	return operation.Display.SetAppBrightness(ctx, n.cfg.Output, val)
}

func (n *Native) OpenWriteSetting(ctx context.Context) error {
	return operation.Prompt.Inform(ctx, "Screen brightness", writeSettingHelp)
}

func (n *Native) GetScreenMode(ctx context.Context) (systemsetting.ScreenMode, error) {
	auto, err := operation.Display.AutoBrightness(ctx)
	if err != nil {
		return systemsetting.ScreenModeUnknown, err
	}
	if auto {
		return systemsetting.ScreenModeAutomatic, nil
	}
	return systemsetting.ScreenModeManual, nil
}

func (n *Native) SetScreenMode(ctx context.Context, mode systemsetting.ScreenMode) error {
	switch mode {
	case systemsetting.ScreenModeManual, systemsetting.ScreenModeAutomatic:
		return operation.Display.SetAutoBrightness(ctx, mode == systemsetting.ScreenModeAutomatic)
	}
	return fmt.Errorf("cannot set screen mode %s", mode)
}

// radio is one switchable setting and the watcher that publishes it.
type radio struct {
	title   string
	topic   events.Topic
	watcher string
	get     func(context.Context) (bool, error)
	set     func(context.Context, bool) error
}

func (n *Native) wifi() radio {
	return radio{
		title:   "Wi-Fi",
		topic:   events.TopicWifi,
		watcher: watchers.NameNetwork,
		get: func(ctx context.Context) (bool, error) {
			state, err := n.IsWifiEnabled(ctx)
			if err != nil {
				return false, err
			}
			if state < 0 {
				return false, fmt.Errorf("wifi: %w", ErrHardwareBlocked)
			}
			return state > 0, nil
		},
		set: operation.Network.SetWiFi,
	}
}

func (n *Native) bluetooth() radio {
	return radio{
		title:   "Bluetooth",
		topic:   events.TopicBluetooth,
		watcher: watchers.NameBluetooth,
		get:     n.IsBluetoothEnabled,
		set:     operation.Bluetooth.SetPowered,
	}
}

func (n *Native) airplane() radio {
	return radio{
		title:   "Airplane mode",
		topic:   events.TopicAirplane,
		watcher: watchers.NameNetwork,
		get:     n.IsAirplaneEnabled,
		set:     operation.Network.SetAirplane,
	}
}

func (n *Native) location() radio {
	return radio{
		title:   "Location services",
		topic:   events.TopicLocation,
		watcher: watchers.NameLocation,
		get:     n.IsLocationEnabled,
		set:     operation.Location.SetEnabled,
	}
}

// flip inverts r. The watcher for r is subscribed before anything is read
// or written, so the change it causes is published. With confirm, the user
// is asked first; a declined question republishes the unchanged state so
// waiting callers finish.
func (n *Native) flip(ctx context.Context, r radio, confirm bool) error {
	if err := n.await(ctx, r.watcher); err != nil {
		return err
	}

	on, err := r.get(ctx)
	if err != nil {
		return err
	}

	if confirm && n.cfg.ConfirmToggles {
		verb := "on"
		if on {
			verb = "off"
		}
		ok, err := operation.Prompt.Confirm(ctx, r.title, fmt.Sprintf("Turn %s %s?", r.title, verb))
		if err != nil {
			return err
		}
		if !ok {
			n.cfg.logger().Debug("switch declined", "setting", r.title)
			n.bus.Publish(r.topic, on)
			return nil
		}
	}

	return r.set(ctx, !on)
}

func (n *Native) SwitchWifi(ctx context.Context) error {
	return n.flip(ctx, n.wifi(), true)
}

func (n *Native) SwitchWifiSilence(ctx context.Context) error {
	return n.flip(ctx, n.wifi(), false)
}

func (n *Native) SwitchLocation(ctx context.Context) error {
	return n.flip(ctx, n.location(), true)
}

func (n *Native) SwitchBluetooth(ctx context.Context) error {
	return n.flip(ctx, n.bluetooth(), true)
}

func (n *Native) SwitchBluetoothSilence(ctx context.Context) error {
	return n.flip(ctx, n.bluetooth(), false)
}

func (n *Native) SwitchAirplane(ctx context.Context) error {
	return n.flip(ctx, n.airplane(), true)
}

// ActiveListener starts the watcher publishing the named setting. Wifi
// and airplane share the NetworkManager watcher.
func (n *Native) ActiveListener(ctx context.Context, name string) error {
	switch name {
	case systemsetting.ListenerWifi, "airplane":
		n.ensure(watchers.NameNetwork)
	case systemsetting.ListenerBluetooth:
		n.ensure(watchers.NameBluetooth)
	case "location":
		n.ensure(watchers.NameLocation)
	case "volume":
		n.ensure(watchers.NameVolume)
	case "brightness":
		n.ensure(watchers.NameBrightness)
	default:
		return fmt.Errorf("listener %q: %w", name, systemsetting.ErrUnsupported)
	}
	return nil
}
