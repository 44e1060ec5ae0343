package watchers

import (
	"context"
	"log/slog"
	"time"

	"github.com/hoppxi/sysset/internal/subscribe"
	"github.com/hoppxi/sysset/pkg/displayinfo"
	"github.com/hoppxi/sysset/pkg/events"
	"github.com/hoppxi/sysset/pkg/netinfo"
	"github.com/hoppxi/sysset/pkg/operation"
)

// Watcher names.
const (
	NameVolume     = "volume"
	NameBrightness = "brightness"
	NameNetwork    = "network"
	NameBluetooth  = "bluetooth"
	NameLocation   = "location"
)

// Volume publishes the default sink volume in 0..1 on TopicVolume. A muted
// sink reads as 0.
func Volume(bus *events.Bus) Func {
	return func(stop <-chan struct{}, ready func()) {
		publish := dedup(func(v float64) { bus.Publish(events.TopicVolume, v) })
		src := subscribe.AudioEvents(stop)
		ready()
		pump(stop, src, func(ev subscribe.AudioEvent) {
			if ev.Muted {
				publish.set(0)
				return
			}
			publish.set(ev.Volume)
		})
	}
}

// Brightness publishes the backlight level of device under root in 0..1 on
// TopicBrightness.
func Brightness(bus *events.Bus, root, device string) Func {
	return func(stop <-chan struct{}, ready func()) {
		publish := dedup(func(v float64) { bus.Publish(events.TopicBrightness, v) })
		src := subscribe.DisplayEvents(stop)
		ready()
		pump(stop, src, func(struct{}) {
			info, err := displayinfo.GetDisplayInfoAt(root, device)
			if err != nil {
				slog.Debug("failed to read backlight", "err", err)
				return
			}
			publish.set(info.Brightness)
		})
	}
}

// Network publishes wifi enabled on TopicWifi and airplane mode on
// TopicAirplane, both as bool.
func Network(bus *events.Bus) Func {
	return func(stop <-chan struct{}, ready func()) {
		wifi := dedup(func(on bool) { bus.Publish(events.TopicWifi, on) })
		airplane := dedup(func(on bool) { bus.Publish(events.TopicAirplane, on) })

		// Subscribe before seeding: a change after the seed is then always
		// delivered, and one before it is already part of the seed.
		src := subscribe.NetworkEvents(stop)
		if info, err := netinfo.GetNetworkInfo(context.Background()); err == nil {
			wifi.seed(info.WifiState() > 0)
			airplane.seed(info.Airplane())
		}
		ready()

		pump(stop, src, func(ev subscribe.NetworkEvent) {
			info, err := netinfo.GetNetworkInfo(context.Background())
			if err != nil {
				slog.Debug("failed to read network state", "err", err)
				return
			}
			switch ev.Kind {
			case subscribe.NetworkWifi:
				wifi.set(info.WifiState() > 0)
			case subscribe.NetworkAirplane:
				airplane.set(info.Airplane())
			}
		})
	}
}

// Bluetooth publishes the adapter power state on TopicBluetooth.
func Bluetooth(bus *events.Bus) Func {
	return func(stop <-chan struct{}, ready func()) {
		publish := dedup(func(on bool) { bus.Publish(events.TopicBluetooth, on) })
		src := subscribe.BluetoothEvents(stop)
		ready()
		pump(stop, src, func(ev subscribe.BluetoothEvent) {
			publish.set(ev.Powered)
		})
	}
}

// Location publishes the location services state on TopicLocation,
// polling every interval.
func Location(bus *events.Bus, interval time.Duration) Func {
	return func(stop <-chan struct{}, ready func()) {
		read := func() (bool, error) {
			return operation.Location.Enabled(context.Background())
		}
		src := subscribe.LocationEvents(stop, interval, read)
		ready()
		pump(stop, src, func(on bool) {
			bus.Publish(events.TopicLocation, on)
		})
	}
}
