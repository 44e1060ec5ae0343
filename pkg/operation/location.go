package operation

import (
	"context"
	"strconv"
)

type location struct{}

// Location is the exported instance.
var Location location

const (
	locationSchema = "org.gnome.system.location"
	locationKey    = "enabled"
)

// Enabled reports whether location services are on.
func (l *location) Enabled(ctx context.Context) (bool, error) {
	return gsettingsGetBool(ctx, locationSchema, locationKey)
}

// SetEnabled turns location services on or off.
func (l *location) SetEnabled(ctx context.Context, on bool) error {
	return gsettingsSet(ctx, locationSchema, locationKey, strconv.FormatBool(on))
}
