package installer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CommandBackend shells out to a configured installer command, e.g.
// "php-build {version} {dest}". {version} and {dest} are substituted per
// argument; the command inherits stdio so compile output stays visible.
type CommandBackend struct {
	Template string
}

func (b CommandBackend) Install(ctx context.Context, version, dest string) error {
	fields := strings.Fields(b.Template)
	if len(fields) == 0 {
		return fmt.Errorf("empty installer command")
	}
	args := make([]string, 0, len(fields)-1)
	replacer := strings.NewReplacer("{version}", version, "{dest}", dest)
	for _, f := range fields[1:] {
		args = append(args, replacer.Replace(f))
	}
	cmd := exec.CommandContext(ctx, fields[0], args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", fields[0], err)
	}
	return nil
}
