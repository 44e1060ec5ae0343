package btinfo

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type objects = map[dbus.ObjectPath]map[string]map[string]dbus.Variant

func TestFromManagedObjects(t *testing.T) {
	managed := objects{
		"/org/bluez/hci1": {"org.bluez.Adapter1": {"Powered": dbus.MakeVariant(false)}},
		"/org/bluez/hci0": {"org.bluez.Adapter1": {"Powered": dbus.MakeVariant(true)}},
		"/org/bluez/hci0/dev_AA_BB": {"org.bluez.Device1": {
			"Name":      dbus.MakeVariant("Headphones"),
			"Connected": dbus.MakeVariant(true),
		}},
		"/org/bluez/hci0/dev_CC_DD": {"org.bluez.Device1": {
			"Name":      dbus.MakeVariant("Keyboard"),
			"Connected": dbus.MakeVariant(false),
		}},
	}

	info, err := fromManagedObjects(managed)
	require.NoError(t, err)
	assert.Equal(t, "/org/bluez/hci0", info.Adapter)
	assert.True(t, info.Enabled)
	require.Len(t, info.ConnectedDevices, 1)
	assert.Equal(t, "Headphones", info.ConnectedDevices[0].Name)
}

func TestFromManagedObjectsNoAdapter(t *testing.T) {
	_, err := fromManagedObjects(objects{})
	assert.ErrorIs(t, err, ErrNoAdapter)
}
