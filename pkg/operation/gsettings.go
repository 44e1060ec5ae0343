package operation

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// gsettingsBin is the gsettings executable.
var gsettingsBin = "gsettings"

func gsettingsGet(ctx context.Context, schema, key string) (string, error) {
	out, err := exec.CommandContext(ctx, gsettingsBin, "get", schema, key).Output()
	if err != nil {
		return "", fmt.Errorf("gsettings get %s %s: %w", schema, key, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func gsettingsGetBool(ctx context.Context, schema, key string) (bool, error) {
	v, err := gsettingsGet(ctx, schema, key)
	if err != nil {
		return false, err
	}
	return parseGVariantBool(v)
}

func gsettingsSet(ctx context.Context, schema, key, value string) error {
	if err := exec.CommandContext(ctx, gsettingsBin, "set", schema, key, value).Run(); err != nil {
		return fmt.Errorf("gsettings set %s %s: %w", schema, key, err)
	}
	return nil
}

func parseGVariantBool(v string) (bool, error) {
	switch strings.TrimSpace(v) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", v)
}
