package buildsys

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/goplus/v4l2build/internal/errs"
)

// Runner runs argv in dir and waits for it to finish.
type Runner func(ctx context.Context, dir string, argv []string) error

// Exec is the Runner used outside tests. The child's output goes to
// stderr: stdout carries the metadata directives.
func Exec(ctx context.Context, dir string, argv []string) error {
	if len(argv) == 0 {
		return &errs.ToolError{Err: errors.New("empty command")}
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &errs.ToolError{Command: argv, Status: exitErr.Error()}
		}
		return &errs.ToolError{Command: argv, Err: err}
	}
	return nil
}
