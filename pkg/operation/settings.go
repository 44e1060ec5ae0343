package operation

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

type settingsPanel struct{}

// SettingsPanel opens the desktop's settings UI.
var SettingsPanel settingsPanel

// Open runs argv and blocks until the panel window closes.
func (s *settingsPanel) Open(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return errors.New("no settings command configured")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}
