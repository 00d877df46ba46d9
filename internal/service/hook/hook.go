package hook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrEmptyCommand is returned when a hook has no program to start.
var ErrEmptyCommand = errors.New("hook command is empty")

// Runner starts a hook command.
type Runner interface {
	Run(ctx context.Context, env []string) error
}

// Command starts an external program given as argv.
type Command struct {
	argv []string
}

// NewCommand returns a hook for argv. argv[0] is looked up in PATH.
func NewCommand(argv []string) (*Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, ErrEmptyCommand
	}

	return &Command{argv: append([]string(nil), argv...)}, nil
}

// Run starts the command with env appended to the current environment and
// waits for it to exit.
func (c *Command) Run(ctx context.Context, env []string) error {
	//nolint:gosec // The command line comes from the operator's settings file.
	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Env = append(os.Environ(), env...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s: %w (output: %q)", c.argv[0], err, output)
	}

	return nil
}

// Nop is a hook that does nothing.
type Nop struct{}

// Run implements Runner.
func (Nop) Run(context.Context, []string) error {
	return nil
}
