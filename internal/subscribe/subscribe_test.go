package subscribe

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBacklightChange(t *testing.T) {
	msg := []byte("change@/devices/pci0000:00/0000:00:02.0/drm/card0/card0-eDP-1/intel_backlight\x00" +
		"ACTION=change\x00DEVPATH=/devices/pci0000:00/intel_backlight\x00SUBSYSTEM=backlight\x00SEQNUM=4711\x00")
	assert.True(t, isBacklightChange(msg))

	add := []byte("add@/devices/x\x00ACTION=add\x00SUBSYSTEM=backlight\x00")
	assert.False(t, isBacklightChange(add))

	other := []byte("change@/devices/x\x00ACTION=change\x00SUBSYSTEM=power_supply\x00")
	assert.False(t, isBacklightChange(other))
}

func TestNetworkKinds(t *testing.T) {
	v := dbus.MakeVariant(true)

	tests := []struct {
		name    string
		iface   string
		changed map[string]dbus.Variant
		want    []NetworkKind
	}{
		{"wifi", "org.freedesktop.NetworkManager", map[string]dbus.Variant{"WirelessEnabled": v}, []NetworkKind{NetworkWifi, NetworkAirplane}},
		{"hardware switch", "org.freedesktop.NetworkManager", map[string]dbus.Variant{"WirelessHardwareEnabled": v}, []NetworkKind{NetworkWifi, NetworkAirplane}},
		{"wwan", "org.freedesktop.NetworkManager", map[string]dbus.Variant{"WwanEnabled": v}, []NetworkKind{NetworkAirplane}},
		{"unrelated property", "org.freedesktop.NetworkManager", map[string]dbus.Variant{"Connectivity": dbus.MakeVariant(uint32(4))}, nil},
		{"device interface", "org.freedesktop.NetworkManager.Device.Wireless", map[string]dbus.Variant{"WirelessEnabled": v}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, networkKinds(tt.iface, tt.changed))
		})
	}
}

func TestAdapterPowered(t *testing.T) {
	powered, ok := adapterPowered("org.bluez.Adapter1", map[string]dbus.Variant{"Powered": dbus.MakeVariant(false)})
	require.True(t, ok)
	assert.False(t, powered)

	_, ok = adapterPowered("org.bluez.Device1", map[string]dbus.Variant{"Powered": dbus.MakeVariant(true)})
	assert.False(t, ok)

	_, ok = adapterPowered("org.bluez.Adapter1", map[string]dbus.Variant{"Discovering": dbus.MakeVariant(true)})
	assert.False(t, ok)
}

func TestPropertiesChanged(t *testing.T) {
	_, _, ok := propertiesChanged(nil)
	assert.False(t, ok)

	sig := &dbus.Signal{
		Name: "org.freedesktop.DBus.Properties.PropertiesChanged",
		Body: []any{"org.bluez.Adapter1", map[string]dbus.Variant{"Powered": dbus.MakeVariant(true)}, []string{}},
	}
	iface, changed, ok := propertiesChanged(sig)
	require.True(t, ok)
	assert.Equal(t, "org.bluez.Adapter1", iface)
	assert.Contains(t, changed, "Powered")

	sig.Body = []any{"org.bluez.Adapter1"}
	_, _, ok = propertiesChanged(sig)
	assert.False(t, ok)
}

// fakeSetting is a location state read from a test.
type fakeSetting struct {
	mu  sync.Mutex
	on  bool
	err error
}

func (f *fakeSetting) read() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on, f.err
}

func (f *fakeSetting) set(on bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.on, f.err = on, err
}

func TestLocationEventsReportsChangesOnly(t *testing.T) {
	setting := &fakeSetting{}
	stop := make(chan struct{})
	events := LocationEvents(stop, 5*time.Millisecond, setting.read)

	select {
	case v := <-events:
		t.Fatalf("unexpected event %v without a change", v)
	case <-time.After(30 * time.Millisecond):
	}

	setting.set(true, nil)
	select {
	case v := <-events:
		assert.True(t, v)
	case <-time.After(time.Second):
		t.Fatal("no event after change")
	}

	// Failed reads are skipped, not reported as a change.
	setting.set(false, errors.New("gsettings: not found"))
	select {
	case v := <-events:
		t.Fatalf("unexpected event %v on read failure", v)
	case <-time.After(30 * time.Millisecond):
	}

	close(stop)
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestLocationEventsBaselineTakenBeforeReturn(t *testing.T) {
	setting := &fakeSetting{}
	stop := make(chan struct{})
	defer close(stop)

	events := LocationEvents(stop, 20*time.Millisecond, setting.read)
	// A switch issued right after subscribing must not become the baseline.
	setting.set(true, nil)

	select {
	case v := <-events:
		assert.True(t, v)
	case <-time.After(time.Second):
		t.Fatal("change made right after subscribing was missed")
	}
}
