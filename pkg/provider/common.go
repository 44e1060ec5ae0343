package provider

import (
	"context"
	"fmt"
	"math"

	"github.com/hoppxi/sysset/internal/watchers"
	"github.com/hoppxi/sysset/pkg/audioinfo"
	"github.com/hoppxi/sysset/pkg/btinfo"
	"github.com/hoppxi/sysset/pkg/displayinfo"
	"github.com/hoppxi/sysset/pkg/events"
	"github.com/hoppxi/sysset/pkg/netinfo"
	"github.com/hoppxi/sysset/pkg/operation"
	"github.com/hoppxi/sysset/pkg/systemsetting"
)

// base holds the backends both variants share.
type base struct {
	cfg   Config
	bus   *events.Bus
	group *watchers.Group

	// newWatcher overrides the watcher built for a name.
	newWatcher func(name string) watchers.Func
}

func newBase(cfg Config, bus *events.Bus) base {
	if bus == nil {
		bus = events.NewBus()
	}
	return base{
		cfg:   cfg,
		bus:   bus,
		group: watchers.NewGroup(cfg.logger()),
	}
}

func (b *base) watcher(name string) watchers.Func {
	if b.newWatcher != nil {
		return b.newWatcher(name)
	}
	switch name {
	case watchers.NameVolume:
		return watchers.Volume(b.bus)
	case watchers.NameBrightness:
		return watchers.Brightness(b.bus, displayinfo.DefaultRoot, b.cfg.Backlight)
	case watchers.NameNetwork:
		return watchers.Network(b.bus)
	case watchers.NameBluetooth:
		return watchers.Bluetooth(b.bus)
	case watchers.NameLocation:
		return watchers.Location(b.bus, b.cfg.locationInterval())
	}
	return nil
}

// ensure starts the named watcher unless it is running.
func (b *base) ensure(name string) {
	f := b.watcher(name)
	if f == nil {
		return
	}
	if b.group.Start(name, f) {
		b.cfg.logger().Debug("started watcher", "watcher", name)
	}
}

// await starts the named watcher and blocks until its source is
// subscribed, so a change made afterwards is published.
func (b *base) await(ctx context.Context, name string) error {
	b.ensure(name)
	select {
	case <-b.group.Ready(name):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops every watcher.
func (b *base) Close() error {
	b.group.StopAll()
	return nil
}

func (b *base) GetBrightness(ctx context.Context) (float64, error) {
	info, err := displayinfo.GetDisplayInfoAt(displayinfo.DefaultRoot, b.cfg.Backlight)
	if err != nil {
		return 0, err
	}
	return info.Brightness, nil
}

func (b *base) SetBrightness(ctx context.Context, val float64) error {
	return operation.Display.SetBrightness(ctx, b.cfg.Backlight, val)
}

func (b *base) GetVolume(ctx context.Context, typ systemsetting.VolumeType) (float64, error) {
	sink, err := sinkFor(typ)
	if err != nil {
		return 0, err
	}
	return audioinfo.DeviceVolume(sink)
}

func (b *base) SetVolume(ctx context.Context, val float64, cfg systemsetting.VolumeConfig) error {
	sink, err := sinkFor(cfg.Type)
	if err != nil {
		return err
	}

	lvl := int(math.Round(math.Min(1, math.Max(0, val)) * 100))
	if sink {
		err = operation.Audio.SetOutputLevel(ctx, lvl)
	} else {
		err = operation.Audio.SetInputLevel(ctx, lvl)
	}
	if err != nil {
		return err
	}

	// Feedback failures do not undo the volume change.
	if cfg.PlaySound {
		if err := operation.Audio.PlayFeedback(ctx); err != nil {
			b.cfg.logger().Debug("volume feedback failed", "err", err)
		}
	}
	if cfg.ShowUI {
		if err := operation.Notify.VolumeOSD(ctx, lvl); err != nil {
			b.cfg.logger().Debug("volume OSD failed", "err", err)
		}
	}
	return nil
}

func (b *base) IsWifiEnabled(ctx context.Context) (int, error) {
	info, err := netinfo.GetNetworkInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info.WifiState(), nil
}

func (b *base) IsAirplaneEnabled(ctx context.Context) (bool, error) {
	info, err := netinfo.GetNetworkInfo(ctx)
	if err != nil {
		return false, err
	}
	return info.Airplane(), nil
}

func (b *base) IsBluetoothEnabled(ctx context.Context) (bool, error) {
	info, err := btinfo.GetBluetoothInfo(ctx)
	if err != nil {
		return false, err
	}
	return info.Enabled, nil
}

func (b *base) IsLocationEnabled(ctx context.Context) (bool, error) {
	return operation.Location.Enabled(ctx)
}

// sinkFor maps a volume type to the default sink (true) or the default
// source (false).
func sinkFor(typ systemsetting.VolumeType) (bool, error) {
	switch typ {
	case "", systemsetting.VolumeMusic, systemsetting.VolumeSystem, systemsetting.VolumeRing,
		systemsetting.VolumeAlarm, systemsetting.VolumeNotification:
		return true, nil
	case systemsetting.VolumeCall:
		return false, nil
	}
	return false, fmt.Errorf("unknown volume type %q", typ)
}
