package btinfo

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/godbus/dbus/v5"
)

type BluetoothDevice struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

type BluetoothInfo struct {
	Adapter          string            `json:"adapter"`
	Enabled          bool              `json:"enabled"`
	ConnectedDevices []BluetoothDevice `json:"connected_devices"`
}

// ErrNoAdapter is returned when BlueZ knows no adapter.
var ErrNoAdapter = errors.New("no bluetooth adapters")

func asString(v dbus.Variant) (string, bool) {
	s, ok := v.Value().(string)
	return s, ok
}

func asBool(v dbus.Variant) (bool, bool) {
	b, ok := v.Value().(bool)
	return b, ok
}

// GetBluetoothInfo reads the first adapter and its connected devices.
func GetBluetoothInfo(ctx context.Context) (*BluetoothInfo, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}

	obj := conn.Object("org.bluez", "/")
	var managed map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	if err := obj.CallWithContext(ctx, "org.freedesktop.DBus.ObjectManager.GetManagedObjects", 0).Store(&managed); err != nil {
		return nil, err
	}

	return fromManagedObjects(managed)
}

func fromManagedObjects(managed map[dbus.ObjectPath]map[string]map[string]dbus.Variant) (*BluetoothInfo, error) {
	info := &BluetoothInfo{
		ConnectedDevices: []BluetoothDevice{},
	}

	adapters := []dbus.ObjectPath{}
	for path, ifaces := range managed {
		if _, ok := ifaces["org.bluez.Adapter1"]; ok {
			adapters = append(adapters, path)
		}
	}
	if len(adapters) == 0 {
		return info, ErrNoAdapter
	}

	// Map order is random; hci0 should win over hci1.
	sort.Slice(adapters, func(i, j int) bool { return adapters[i] < adapters[j] })
	info.Adapter = string(adapters[0])
	if p, ok := managed[adapters[0]]["org.bluez.Adapter1"]["Powered"]; ok {
		info.Enabled, _ = asBool(p)
	}

	for path, ifaces := range managed {
		dev, ok := ifaces["org.bluez.Device1"]
		if !ok {
			continue
		}

		connected := false
		if c, ok := dev["Connected"]; ok {
			connected, _ = asBool(c)
		}
		if !connected {
			continue
		}

		name := ""
		if n, ok := dev["Name"]; ok {
			name, _ = asString(n)
		}

		info.ConnectedDevices = append(info.ConnectedDevices, BluetoothDevice{
			ID:        string(path),
			Name:      name,
			Connected: true,
		})
	}

	return info, nil
}

func GetBluetoothInfoJSON() ([]byte, error) {
	info, err := GetBluetoothInfo(context.Background())
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(info, "", "  ")
}
