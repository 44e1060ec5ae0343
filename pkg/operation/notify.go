package operation

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

type notify struct {
	mu     sync.Mutex
	lastID uint32
}

// Notify is the exported instance.
var Notify = &notify{}

const (
	notifyBus   = "org.freedesktop.Notifications"
	notifyPath  = "/org/freedesktop/Notifications"
	notifyIface = "org.freedesktop.Notifications"
)

// VolumeOSD shows a volume bubble through the notification daemon. Repeated
// calls replace the previous bubble instead of stacking.
func (n *notify) VolumeOSD(ctx context.Context, level int) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("dbus connection error: %w", err)
	}

	icon := "audio-volume-medium"
	switch {
	case level <= 0:
		icon = "audio-volume-muted"
	case level < 34:
		icon = "audio-volume-low"
	case level > 66:
		icon = "audio-volume-high"
	}

	hints := map[string]dbus.Variant{
		"value":                           dbus.MakeVariant(int32(level)),
		"x-canonical-private-synchronous": dbus.MakeVariant("volume"),
		"transient":                       dbus.MakeVariant(true),
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	obj := conn.Object(notifyBus, notifyPath)
	var id uint32
	err = obj.CallWithContext(ctx, notifyIface+".Notify", 0,
		"sysset",
		n.lastID,
		icon,
		"Volume",
		fmt.Sprintf("%d%%", level),
		[]string{},
		hints,
		int32(1500),
	).Store(&id)
	if err != nil {
		return fmt.Errorf("failed to show volume notification: %w", err)
	}
	n.lastID = id
	return nil
}
