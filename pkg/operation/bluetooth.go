package operation

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/hoppxi/sysset/pkg/btinfo"
)

type bluetooth struct{}

// Bluetooth is the exported instance.
var Bluetooth bluetooth

const (
	bluezBus         = "org.bluez"
	adapterInterface = "org.bluez.Adapter1"
)

// SetPowered turns the radio of the default adapter on or off by setting
// the Adapter's Powered property.
func (b *bluetooth) SetPowered(ctx context.Context, on bool) error {
	info, err := btinfo.GetBluetoothInfo(ctx)
	if err != nil {
		return err
	}

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("dbus connection error: %w", err)
	}
	defer conn.Close()

	adapterObj := conn.Object(bluezBus, dbus.ObjectPath(info.Adapter))
	if err := setProperty(ctx, adapterObj, adapterInterface, "Powered", on); err != nil {
		return fmt.Errorf("failed to set bluetooth powered=%t: %w", on, err)
	}

	return nil
}
