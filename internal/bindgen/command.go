package bindgen

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Command runs the bindgen executable.
type Command struct {
	Path string // defaults to "bindgen"

	// Output runs argv and returns its stdout. Defaults to exec.
	Output func(ctx context.Context, argv []string) ([]byte, error)
}

func (c *Command) FileName() string { return "bindings.rs" }

// Args returns the bindgen command line for req. Only declarations coming
// from the requested headers are kept.
func (c *Command) Args(req Request) []string {
	path := c.Path
	if path == "" {
		path = "bindgen"
	}
	args := []string{path, req.Umbrella}
	for _, h := range req.Headers {
		args = append(args, "--allowlist-file", h)
	}
	args = append(args, "--")
	for _, inc := range req.Includes {
		args = append(args, "-I"+inc)
	}
	if req.Target != "" {
		args = append(args, "--target="+req.Target)
	}
	return args
}

func (c *Command) Generate(ctx context.Context, req Request) ([]byte, error) {
	argv := c.Args(req)
	run := c.Output
	if run == nil {
		run = output
	}
	out, err := run(ctx, argv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", shellquote.Join(argv...), err)
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, fmt.Errorf("%s produced no output", argv[0])
	}
	return out, nil
}

func output(ctx context.Context, argv []string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}
