package systemsetting

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by providers for operations their platform
// variant does not have.
var ErrUnsupported = errors.New("operation not supported on this platform")

// ScreenMode is the screen-brightness mode.
type ScreenMode int

const (
	ScreenModeUnknown   ScreenMode = -1
	ScreenModeManual    ScreenMode = 0
	ScreenModeAutomatic ScreenMode = 1
)

func (m ScreenMode) String() string {
	switch m {
	case ScreenModeManual:
		return "manual"
	case ScreenModeAutomatic:
		return "automatic"
	default:
		return "unknown"
	}
}

// ParseScreenMode accepts the names returned by String as well as the
// numeric values -1, 0 and 1.
func ParseScreenMode(s string) (ScreenMode, error) {
	switch s {
	case "manual", "0":
		return ScreenModeManual, nil
	case "automatic", "auto", "1":
		return ScreenModeAutomatic, nil
	case "unknown", "-1":
		return ScreenModeUnknown, nil
	}
	return ScreenModeUnknown, errors.New("invalid screen mode: " + s)
}

// VolumeType selects a logical volume channel.
type VolumeType string

const (
	VolumeMusic        VolumeType = "music"
	VolumeCall         VolumeType = "call"
	VolumeSystem       VolumeType = "system"
	VolumeRing         VolumeType = "ring"
	VolumeAlarm        VolumeType = "alarm"
	VolumeNotification VolumeType = "notification"
)

// VolumeConfig holds the options of SetVolume. The zero value means: no
// feedback sound, music channel, no volume UI.
type VolumeConfig struct {
	PlaySound bool       `json:"playSound"`
	Type      VolumeType `json:"type"`
	ShowUI    bool       `json:"showUI"`
}

func (c VolumeConfig) withDefaults() VolumeConfig {
	if c.Type == "" {
		c.Type = VolumeMusic
	}
	return c
}

// Listener names accepted by Provider.ActiveListener.
const (
	ListenerWifi      = "wifi"
	ListenerBluetooth = "bluetooth"
)

// Capabilities describes what a provider's platform variant supports.
type Capabilities struct {
	// Platform is a human readable variant name.
	Platform string `json:"platform"`
	// ScreenMode: the platform distinguishes manual and automatic brightness.
	ScreenMode bool `json:"screenMode"`
	// AppBrightness: a brightness that only affects this application's output.
	AppBrightness bool `json:"appBrightness"`
	// WriteSettingPrompt: the platform can prompt for write-settings access.
	WriteSettingPrompt bool `json:"writeSettingPrompt"`
	// SilentToggle: radios can be switched without a confirmation UI.
	SilentToggle bool `json:"silentToggle"`
	// ChangeNotifications: the provider publishes per-setting change topics.
	// Without it, toggle completion is inferred from the foreground topic.
	ChangeNotifications bool `json:"changeNotifications"`
	// GatedToggles: confirming toggles are subject to the app-store gate.
	GatedToggles bool `json:"gatedToggles"`
	// WifiListener: the provider can actively monitor wifi changes.
	WifiListener bool `json:"wifiListener"`
}

// Provider is the platform-native settings surface the facade delegates to.
// Brightness values are normalized to 0..1, volume levels likewise.
type Provider interface {
	Capabilities() Capabilities

	GetBrightness(ctx context.Context) (float64, error)
	SetBrightness(ctx context.Context, val float64) error
	GetAppBrightness(ctx context.Context) (float64, error)
	SetAppBrightness(ctx context.Context, val float64) error
	OpenWriteSetting(ctx context.Context) error
	GetScreenMode(ctx context.Context) (ScreenMode, error)
	SetScreenMode(ctx context.Context, mode ScreenMode) error

	GetVolume(ctx context.Context, typ VolumeType) (float64, error)
	SetVolume(ctx context.Context, val float64, cfg VolumeConfig) error

	// IsWifiEnabled reports the radio state as a number: positive when on,
	// zero when off, negative when blocked.
	IsWifiEnabled(ctx context.Context) (int, error)
	SwitchWifi(ctx context.Context) error
	SwitchWifiSilence(ctx context.Context) error
	IsLocationEnabled(ctx context.Context) (bool, error)
	SwitchLocation(ctx context.Context) error
	IsBluetoothEnabled(ctx context.Context) (bool, error)
	SwitchBluetooth(ctx context.Context) error
	SwitchBluetoothSilence(ctx context.Context) error
	IsAirplaneEnabled(ctx context.Context) (bool, error)
	SwitchAirplane(ctx context.Context) error

	// ActiveListener asks the provider to start monitoring the named
	// setting so that its change topic gets published.
	ActiveListener(ctx context.Context, name string) error
}
