package subscribe

import (
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const nmMatchRule = "type='signal',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged',path_namespace='/org/freedesktop/NetworkManager'"

// NetworkEvents reports NetworkManager radio changes until stop is closed.
// The match rule is in place when it returns.
func NetworkEvents(stop <-chan struct{}) <-chan NetworkEvent {
	events := make(chan NetworkEvent, 10)

	match, err := matchProperties(nmMatchRule)
	if err != nil {
		slog.Warn("NetworkEvents: cannot watch properties", "err", err)
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

			for _, kind := range networkKinds(iface, changed) {
				select {
				case events <- NetworkEvent{Kind: kind}:
				default:
				}
			}
		}
	}()

	return events
}

// networkKinds maps a PropertiesChanged payload to the radio states it
// touches. Wifi changes also move the airplane state.
func networkKinds(iface string, changed map[string]dbus.Variant) []NetworkKind {
	if iface != "org.freedesktop.NetworkManager" {
		return nil
	}

	var wifi, wwan bool
	_, wifi = changed["WirelessEnabled"]
	if _, ok := changed["WirelessHardwareEnabled"]; ok {
		wifi = true
	}
	_, wwan = changed["WwanEnabled"]

	var kinds []NetworkKind
	if wifi {
		kinds = append(kinds, NetworkWifi)
	}
	if wifi || wwan {
		kinds = append(kinds, NetworkAirplane)
	}
	return kinds
}

func propertiesChanged(sig *dbus.Signal) (string, map[string]dbus.Variant, bool) {
	if sig == nil || sig.Name != "org.freedesktop.DBus.Properties.PropertiesChanged" {
		return "", nil, false
	}
	if len(sig.Body) < 2 {
		return "", nil, false
	}

	iface, ok := sig.Body[0].(string)
	if !ok {
		return "", nil, false
	}

	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return "", nil, false
	}
	return iface, changed, true
}
