package operation

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

type network struct{}

// Network is the exported instance.
var Network network

const (
	nmBus       = "org.freedesktop.NetworkManager"
	nmPath      = "/org/freedesktop/NetworkManager"
	nmInterface = "org.freedesktop.NetworkManager"
)

// setProperty sets iface.prop on obj, honoring ctx.
func setProperty(ctx context.Context, obj dbus.BusObject, iface, prop string, v any) error {
	return obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Set", 0, iface, prop, dbus.MakeVariant(v)).Err
}

// SetWiFi turns the WiFi radio on or off.
func (n *network) SetWiFi(ctx context.Context, on bool) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	nmObj := conn.Object(nmBus, dbus.ObjectPath(nmPath))
	if err := setProperty(ctx, nmObj, nmInterface, "WirelessEnabled", on); err != nil {
		return fmt.Errorf("failed to set wireless enabled=%t: %w", on, err)
	}
	return nil
}

// SetAirplane turns ALL networking radios (WiFi, WWAN) off, or back on.
func (n *network) SetAirplane(ctx context.Context, on bool) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	nmObj := conn.Object(nmBus, dbus.ObjectPath(nmPath))

	// Kill the radios rather than Enable(false), which stops NM's own
	// networking logic.
	if err := setProperty(ctx, nmObj, nmInterface, "WirelessEnabled", !on); err != nil {
		return fmt.Errorf("failed to set wireless enabled=%t: %w", !on, err)
	}

	// Ignore the error: most machines have no WWAN device.
	_ = setProperty(ctx, nmObj, nmInterface, "WwanEnabled", !on)

	return nil
}
