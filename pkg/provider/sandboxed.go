package provider

import (
	"context"

	"github.com/hoppxi/sysset/internal/watchers"
	"github.com/hoppxi/sysset/pkg/events"
	"github.com/hoppxi/sysset/pkg/operation"
	"github.com/hoppxi/sysset/pkg/systemsetting"
)

// Sandboxed changes radios through the desktop settings panel.
type Sandboxed struct {
	base
}

func NewSandboxed(cfg Config, bus *events.Bus) *Sandboxed {
	return &Sandboxed{base: newBase(cfg, bus)}
}

func (s *Sandboxed) Capabilities() systemsetting.Capabilities {
	return SandboxedCapabilities
}

func (s *Sandboxed) GetAppBrightness(ctx context.Context) (float64, error) {
	return 0, systemsetting.ErrUnsupported
}

func (s *Sandboxed) SetAppBrightness(ctx context.Context, val float64) error {
	return systemsetting.ErrUnsupported
}

func (s *Sandboxed) OpenWriteSetting(ctx context.Context) error {
	return systemsetting.ErrUnsupported
}

func (s *Sandboxed) GetScreenMode(ctx context.Context) (systemsetting.ScreenMode, error) {
	return systemsetting.ScreenModeUnknown, systemsetting.ErrUnsupported
}

func (s *Sandboxed) SetScreenMode(ctx context.Context, mode systemsetting.ScreenMode) error {
	return systemsetting.ErrUnsupported
}

// openPanel blocks until the panel exits, then reports the return to the
// foreground.
func (s *Sandboxed) openPanel(ctx context.Context, panel string) error {
	if err := operation.SettingsPanel.Open(ctx, s.cfg.settingsCommand(panel)); err != nil {
		return err
	}
	s.bus.Publish(events.TopicForeground, nil)
	return nil
}

func (s *Sandboxed) SwitchWifi(ctx context.Context) error {
	return s.openPanel(ctx, PanelWifi)
}

func (s *Sandboxed) SwitchWifiSilence(ctx context.Context) error {
	return systemsetting.ErrUnsupported
}

func (s *Sandboxed) SwitchLocation(ctx context.Context) error {
	return s.openPanel(ctx, PanelLocation)
}

func (s *Sandboxed) SwitchBluetooth(ctx context.Context) error {
	return s.openPanel(ctx, PanelBluetooth)
}

func (s *Sandboxed) SwitchBluetoothSilence(ctx context.Context) error {
	return systemsetting.ErrUnsupported
}

func (s *Sandboxed) SwitchAirplane(ctx context.Context) error {
	return s.openPanel(ctx, PanelAirplane)
}

// ActiveListener only supports bluetooth; the sandbox sees no other
// change signals.
func (s *Sandboxed) ActiveListener(ctx context.Context, name string) error {
	if name != systemsetting.ListenerBluetooth {
		return systemsetting.ErrUnsupported
	}
	s.ensure(watchers.NameBluetooth)
	return nil
}
