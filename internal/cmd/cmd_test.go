package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hoppxi/sysset/internal/manager"
	"github.com/hoppxi/sysset/pkg/events"
	"github.com/hoppxi/sysset/pkg/provider/mock"
	"github.com/hoppxi/sysset/pkg/systemsetting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with a fresh command tree and a private config.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SYSSET_PLATFORM", "")
	os.Unsetenv("SYSSET_PLATFORM")

	config := filepath.Join(t.TempDir(), "sysset.yaml")
	return runWithConfig(t, config, stdin, args...)
}

func runWithConfig(t *testing.T, config, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--mock", "--config", config}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestBrightnessCommand(t *testing.T) {
	out, err := run(t, "", "brightness")
	require.NoError(t, err)
	assert.Equal(t, "0.5\n", out)

	out, err = run(t, "", "brightness", "--set", "0.2", "--force")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	_, err = run(t, "", "brightness", "--set", "0.2", "--force", "--app")
	assert.Error(t, err)
}

func TestScreenModeCommand(t *testing.T) {
	out, err := run(t, "", "screen-mode")
	require.NoError(t, err)
	assert.Equal(t, "automatic\n", out)

	out, err = run(t, "", "screen-mode", "--set", "manual")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	_, err = run(t, "", "screen-mode", "--set", "sideways")
	assert.Error(t, err)
}

func TestVolumeCommand(t *testing.T) {
	out, err := run(t, "", "volume")
	require.NoError(t, err)
	assert.Equal(t, "0.5\n", out)

	out, err = run(t, "", "volume", "--set", "0.9", "--type", "ring", "--show-ui")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)
}

func TestToggleCommands(t *testing.T) {
	out, err := run(t, "", "wifi")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = run(t, "", "bluetooth", "--switch", "--silent", "--wait", "1s")
	require.NoError(t, err)
	assert.Equal(t, "switched\n", out)

	out, err = run(t, "", "airplane", "--switch", "--wait", "1s")
	require.NoError(t, err)
	assert.Equal(t, "switched\n", out)

	// Location has no silent variant.
	_, err = run(t, "", "location", "--switch", "--silent")
	assert.Error(t, err)
}

func TestSwitchWithoutWaitOutlivesSlowRequest(t *testing.T) {
	var p *mock.Provider
	old := newMock
	newMock = func(bus *events.Bus, caps systemsetting.Capabilities) *mock.Provider {
		p = old(bus, caps)
		// Longer than any fixed grace period the command could use.
		p.SetDelay(mock.OpSwitchWifi, 900*time.Millisecond)
		return p
	}
	t.Cleanup(func() { newMock = old })

	out, err := run(t, "", "wifi", "--switch", "--wait", "0")
	require.NoError(t, err)
	assert.Equal(t, "requested\n", out)

	require.NotNil(t, p)
	assert.Equal(t, 1, p.CallCount(mock.OpSwitchWifi))
	state, err := p.IsWifiEnabled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, state)
}

func TestSandboxedSwitchCompletesOnForeground(t *testing.T) {
	config := filepath.Join(t.TempDir(), "sysset.yaml")
	require.NoError(t, os.WriteFile(config, []byte("platform: sandboxed\napp_store: false\n"), 0o644))

	out, err := runWithConfig(t, config, "", "location", "--switch", "--wait", "1s")
	require.NoError(t, err)
	assert.Equal(t, "switched\n", out)
}

func TestPermissionCommand(t *testing.T) {
	config := filepath.Join(t.TempDir(), "sysset.yaml")
	require.NoError(t, os.WriteFile(config, []byte("platform: sandboxed\n"), 0o644))

	out, err := runWithConfig(t, config, "", "permission")
	require.NoError(t, err)
	assert.Equal(t, "Not needed on this platform.\n", out)
}

func TestSetupWritesConfig(t *testing.T) {
	config := filepath.Join(t.TempDir(), "sysset", "sysset.yaml")
	answers := strings.Join([]string{
		"sandboxed",
		"intel_backlight",
		"",
		"y",
		"yes",
		"127.0.0.1:7070",
	}, "\n") + "\n"

	out, err := runWithConfig(t, config, answers, "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "Config written to "+config)

	cfg, err := manager.NewConfigManager(config).Load()
	require.NoError(t, err)
	assert.Equal(t, "sandboxed", cfg.Platform)
	assert.Equal(t, "intel_backlight", cfg.Backlight)
	assert.True(t, cfg.ConfirmToggles)
	require.NotNil(t, cfg.AppStore)
	assert.True(t, *cfg.AppStore)
	assert.Equal(t, "127.0.0.1:7070", cfg.HTTPAddr)
}

func TestSetupDefaultsKeepConfirmation(t *testing.T) {
	config := filepath.Join(t.TempDir(), "sysset.yaml")

	// Enter at every prompt.
	_, err := runWithConfig(t, config, strings.Repeat("\n", 6), "setup")
	require.NoError(t, err)

	cfg, err := manager.NewConfigManager(config).Load()
	require.NoError(t, err)
	assert.True(t, cfg.ConfirmToggles)
	assert.Equal(t, manager.DefaultConfig().Platform, cfg.Platform)
	assert.Nil(t, cfg.AppStore)
}

func TestSetupDeclinesConfirmation(t *testing.T) {
	config := filepath.Join(t.TempDir(), "sysset.yaml")

	_, err := runWithConfig(t, config, "\n\n\nn\n\n\n", "setup")
	require.NoError(t, err)

	cfg, err := manager.NewConfigManager(config).Load()
	require.NoError(t, err)
	assert.False(t, cfg.ConfirmToggles)
}

func TestSetupRejectsUnknownPlatform(t *testing.T) {
	_, err := run(t, "windows\n", "setup")
	assert.Error(t, err)
}

func TestSetupKeepsExistingConfig(t *testing.T) {
	config := filepath.Join(t.TempDir(), "sysset.yaml")
	require.NoError(t, os.WriteFile(config, []byte("platform: native\n"), 0o644))

	_, err := runWithConfig(t, config, "n\n", "setup")
	require.NoError(t, err)

	data, err := os.ReadFile(config)
	require.NoError(t, err)
	assert.Equal(t, "platform: native\n", string(data))
}
