package subscribe

import (
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const bluezMatchRule = "type='signal',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged',path_namespace='/org/bluez'"

// BluetoothEvents reports adapter power changes until stop is closed. The
// match rule is in place when it returns.
func BluetoothEvents(stop <-chan struct{}) <-chan BluetoothEvent {
	events := make(chan BluetoothEvent, 10)

	match, err := matchProperties(bluezMatchRule)
	if err != nil {
		slog.Warn("BluetoothEvents: cannot watch properties", "err", err)
		close(events)
		return events
	}

	go func() {
		defer close(events)
		defer match.Close()

		for {
			var sig *dbus.Signal
			select {
			case <-stop:
				return
			case s, ok := <-match.signals:
				if !ok {
					return
				}
				sig = s
			}

			iface, changed, ok := propertiesChanged(sig)
			if !ok {
				continue
			}

			powered, ok := adapterPowered(iface, changed)
			if !ok {
				continue
			}

			select {
			case events <- BluetoothEvent{Adapter: string(sig.Path), Powered: powered}:
			default:
			}
		}
	}()

	return events
}

func adapterPowered(iface string, changed map[string]dbus.Variant) (bool, bool) {
	if iface != "org.bluez.Adapter1" {
		return false, false
	}
	v, ok := changed["Powered"]
	if !ok {
		return false, false
	}
	powered, ok := v.Value().(bool)
	return powered, ok
}
