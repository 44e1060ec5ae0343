package netinfo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWifiState(t *testing.T) {
	tests := []struct {
		name string
		info NetworkInfo
		want int
	}{
		{"on", NetworkInfo{WirelessEnabled: true, WirelessHardwareEnabled: true}, 1},
		{"off", NetworkInfo{WirelessEnabled: false, WirelessHardwareEnabled: true}, 0},
		{"hardware blocked", NetworkInfo{WirelessEnabled: true, WirelessHardwareEnabled: false}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.WifiState())
		})
	}
}

func TestAirplane(t *testing.T) {
	assert.True(t, (&NetworkInfo{}).Airplane())
	assert.False(t, (&NetworkInfo{WirelessEnabled: true}).Airplane())
	assert.False(t, (&NetworkInfo{WwanEnabled: true}).Airplane())
}

// fakeBus answers property reads from a map keyed by "path iface.prop". An
// error value is returned instead of stored.
type fakeBus map[string]any

func (f fakeBus) get(ctx context.Context, path dbus.ObjectPath, iface, prop string, dst any) error {
	v, ok := f[fmt.Sprintf("%s %s.%s", path, iface, prop)]
	if !ok {
		return fmt.Errorf("no property %s.%s on %s", iface, prop, path)
	}
	if err, ok := v.(error); ok {
		return err
	}
	reflect.ValueOf(dst).Elem().Set(reflect.ValueOf(v))
	return nil
}

func connectedBus() fakeBus {
	return fakeBus{
		"/org/freedesktop/NetworkManager org.freedesktop.NetworkManager.WirelessEnabled":         true,
		"/org/freedesktop/NetworkManager org.freedesktop.NetworkManager.WirelessHardwareEnabled": true,
		"/org/freedesktop/NetworkManager org.freedesktop.NetworkManager.WwanEnabled":             false,
		"/org/freedesktop/NetworkManager org.freedesktop.NetworkManager.Devices": []dbus.ObjectPath{
			"/org/freedesktop/NetworkManager/Devices/1",
			"/org/freedesktop/NetworkManager/Devices/2",
		},
		"/org/freedesktop/NetworkManager/Devices/1 org.freedesktop.NetworkManager.Device.DeviceType":                 uint32(1),
		"/org/freedesktop/NetworkManager/Devices/2 org.freedesktop.NetworkManager.Device.DeviceType":                 uint32(2),
		"/org/freedesktop/NetworkManager/Devices/2 org.freedesktop.NetworkManager.Device.Wireless.ActiveAccessPoint": dbus.ObjectPath("/org/freedesktop/NetworkManager/AccessPoint/7"),
		"/org/freedesktop/NetworkManager/AccessPoint/7 org.freedesktop.NetworkManager.AccessPoint.Ssid":              []byte("home"),
		"/org/freedesktop/NetworkManager/AccessPoint/7 org.freedesktop.NetworkManager.AccessPoint.MaxBitrate":        uint32(866000),
	}
}

func TestReadNetworkInfo(t *testing.T) {
	info, err := readNetworkInfo(context.Background(), connectedBus().get)
	require.NoError(t, err)

	assert.Equal(t, 1, info.WifiState())
	assert.False(t, info.Airplane())
	assert.True(t, info.Connected)
	assert.Equal(t, CurrentConnection{SSID: "home", Speed: 866000}, info.CurrentConnection)
}

func TestReadNetworkInfoRadioError(t *testing.T) {
	bus := connectedBus()
	bus["/org/freedesktop/NetworkManager org.freedesktop.NetworkManager.WwanEnabled"] = errors.New("access denied")

	_, err := readNetworkInfo(context.Background(), bus.get)
	assert.Error(t, err)
}

func TestReadNetworkInfoSsidError(t *testing.T) {
	bus := connectedBus()
	bus["/org/freedesktop/NetworkManager/AccessPoint/7 org.freedesktop.NetworkManager.AccessPoint.Ssid"] = errors.New("object gone")

	info, err := readNetworkInfo(context.Background(), bus.get)
	require.NoError(t, err)
	assert.False(t, info.Connected)
	assert.Empty(t, info.CurrentConnection.SSID)
}

func TestReadNetworkInfoBitrateError(t *testing.T) {
	bus := connectedBus()
	bus["/org/freedesktop/NetworkManager/AccessPoint/7 org.freedesktop.NetworkManager.AccessPoint.MaxBitrate"] = errors.New("object gone")

	info, err := readNetworkInfo(context.Background(), bus.get)
	require.NoError(t, err)
	assert.True(t, info.Connected)
	assert.Equal(t, CurrentConnection{SSID: "home"}, info.CurrentConnection)
}

func TestReadNetworkInfoWithoutDevices(t *testing.T) {
	bus := connectedBus()
	delete(bus, "/org/freedesktop/NetworkManager org.freedesktop.NetworkManager.Devices")

	info, err := readNetworkInfo(context.Background(), bus.get)
	require.NoError(t, err)
	assert.True(t, info.WirelessEnabled)
	assert.False(t, info.Connected)
}
