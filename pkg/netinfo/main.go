package netinfo

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

type CurrentConnection struct {
	SSID  string `json:"ssid"`
	Speed uint32 `json:"speed"` // max bitrate in Kb/s
}

type NetworkInfo struct {
	WirelessEnabled         bool              `json:"wireless_enabled"`
	WirelessHardwareEnabled bool              `json:"wireless_hardware_enabled"`
	WwanEnabled             bool              `json:"wwan_enabled"`
	Connected               bool              `json:"connected"`
	CurrentConnection       CurrentConnection `json:"current_connection"`
}

// WifiState is 1 when the radio is on, 0 when switched off, and -1 when a
// hardware kill switch blocks it.
func (n *NetworkInfo) WifiState() int {
	switch {
	case !n.WirelessHardwareEnabled:
		return -1
	case n.WirelessEnabled:
		return 1
	default:
		return 0
	}
}

// Airplane reports whether every radio NetworkManager controls is off.
func (n *NetworkInfo) Airplane() bool {
	return !n.WirelessEnabled && !n.WwanEnabled
}

const (
	nmBus       = "org.freedesktop.NetworkManager"
	nmPath      = "/org/freedesktop/NetworkManager"
	nmInterface = "org.freedesktop.NetworkManager"

	deviceTypeWifi = 2
)

// propertyGetter reads one NetworkManager property of the object at path
// into dst.
type propertyGetter func(ctx context.Context, path dbus.ObjectPath, iface, prop string, dst any) error

func busGetter(conn *dbus.Conn) propertyGetter {
	return func(ctx context.Context, path dbus.ObjectPath, iface, prop string, dst any) error {
		return conn.Object(nmBus, path).
			CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, iface, prop).
			Store(dst)
	}
}

// GetNetworkInfo reads radio state from NetworkManager (no sudo).
func GetNetworkInfo(ctx context.Context) (*NetworkInfo, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	return readNetworkInfo(ctx, busGetter(conn))
}

func readNetworkInfo(ctx context.Context, get propertyGetter) (*NetworkInfo, error) {
	info := &NetworkInfo{}
	for prop, dst := range map[string]*bool{
		"WirelessEnabled":         &info.WirelessEnabled,
		"WirelessHardwareEnabled": &info.WirelessHardwareEnabled,
		"WwanEnabled":             &info.WwanEnabled,
	} {
		if err := get(ctx, nmPath, nmInterface, prop, dst); err != nil {
			return nil, err
		}
	}

	// The radio state is complete; the connection is extra.
	var devices []dbus.ObjectPath
	if err := get(ctx, nmPath, nmInterface, "Devices", &devices); err != nil {
		slog.Debug("failed to list network devices", "err", err)
		return info, nil
	}

	for _, devPath := range devices {
		var dtype uint32
		if err := get(ctx, devPath, nmInterface+".Device", "DeviceType", &dtype); err != nil {
			continue
		}
		if dtype != deviceTypeWifi {
			continue
		}
		if conn, ok := wifiConnection(ctx, get, devPath); ok {
			info.Connected = true
			info.CurrentConnection = conn
			break
		}
	}

	return info, nil
}

// wifiConnection reads the access point a wifi device is associated with.
func wifiConnection(ctx context.Context, get propertyGetter, devPath dbus.ObjectPath) (CurrentConnection, bool) {
	var activeAP dbus.ObjectPath
	err := get(ctx, devPath, nmInterface+".Device.Wireless", "ActiveAccessPoint", &activeAP)
	if err != nil || activeAP == "/" {
		return CurrentConnection{}, false
	}

	// SSID is a byte array
	var ssidRaw []byte
	if err := get(ctx, activeAP, nmInterface+".AccessPoint", "Ssid", &ssidRaw); err != nil {
		slog.Debug("failed to read ssid", "ap", activeAP, "err", err)
		return CurrentConnection{}, false
	}
	if len(ssidRaw) == 0 {
		return CurrentConnection{}, false
	}

	conn := CurrentConnection{SSID: string(ssidRaw)}
	if err := get(ctx, activeAP, nmInterface+".AccessPoint", "MaxBitrate", &conn.Speed); err != nil {
		slog.Debug("failed to read bitrate", "ap", activeAP, "err", err)
		conn.Speed = 0
	}
	return conn, true
}

func GetNetworkInfoJSON() ([]byte, error) {
	info, err := GetNetworkInfo(context.Background())
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(info, "", "  ")
}
