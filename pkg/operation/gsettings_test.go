package operation

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGsettings points gsettingsBin at a shell script for the test.
func fakeGsettings(t *testing.T, script string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gsettings")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))

	old := gsettingsBin
	gsettingsBin = path
	t.Cleanup(func() { gsettingsBin = old })
}

func TestGsettingsGetBool(t *testing.T) {
	fakeGsettings(t, `[ "$1 $2 $3" = "get org.gnome.system.location enabled" ] && echo true`)

	on, err := Location.Enabled(context.Background())
	require.NoError(t, err)
	assert.True(t, on)
}

func TestGsettingsSetPassesValue(t *testing.T) {
	out := filepath.Join(t.TempDir(), "args")
	fakeGsettings(t, `echo "$@" > `+out)

	require.NoError(t, Location.SetEnabled(context.Background(), false))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "set org.gnome.system.location enabled false\n", string(b))
}

func TestGsettingsHonorsContext(t *testing.T) {
	fakeGsettings(t, "exec sleep 5")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Location.Enabled(ctx)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	assert.Error(t, Display.SetAutoBrightness(ctx, true))
}
