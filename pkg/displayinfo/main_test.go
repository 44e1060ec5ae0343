package displayinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDevice(t *testing.T, root, name, cur, max string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"), []byte(cur), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"), []byte(max), 0o644))
}

func TestGetDisplayInfoAt(t *testing.T) {
	root := t.TempDir()
	writeDevice(t, root, "intel_backlight", "480\n", "960\n")

	info, err := GetDisplayInfoAt(root, "")
	require.NoError(t, err)
	assert.Equal(t, "intel_backlight", info.Device)
	assert.InDelta(t, 0.5, info.Brightness, 1e-9)
	assert.Equal(t, 50, info.Level)
	assert.Equal(t, 480, info.Raw)
	assert.Equal(t, 960, info.Max)
}

func TestGetDisplayInfoAtNamedDevice(t *testing.T) {
	root := t.TempDir()
	writeDevice(t, root, "acpi_video0", "1\n", "10\n")
	writeDevice(t, root, "intel_backlight", "960\n", "960\n")

	info, err := GetDisplayInfoAt(root, "intel_backlight")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, info.Brightness, 1e-9)

	_, err = GetDisplayInfoAt(root, "nvidia_0")
	assert.Error(t, err)
}

func TestGetDisplayInfoAtErrors(t *testing.T) {
	_, err := GetDisplayInfoAt(t.TempDir(), "")
	assert.Error(t, err)

	root := t.TempDir()
	writeDevice(t, root, "broken", "10\n", "0\n")
	_, err = GetDisplayInfoAt(root, "broken")
	assert.Error(t, err)

	root = t.TempDir()
	writeDevice(t, root, "garbage", "ten\n", "100\n")
	_, err = GetDisplayInfoAt(root, "garbage")
	assert.Error(t, err)
}

func TestGetDisplayInfoAtClamps(t *testing.T) {
	root := t.TempDir()
	writeDevice(t, root, "odd", "150\n", "100\n")

	info, err := GetDisplayInfoAt(root, "")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, info.Brightness, 1e-9)
}
