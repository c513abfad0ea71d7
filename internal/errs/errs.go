// Package errs defines the failure kinds of a build.
//
// Every failure aborts the build. The kinds exist so that callers and tests
// can tell the failures apart with errors.Is, and so that the top-level
// handler can say which phase was running.
package errs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

var (
	ErrConfigMissing     = errors.New("configuration missing")
	ErrNotADirectory     = errors.New("not a directory")
	ErrIO                = errors.New("i/o error")
	ErrToolInvocation    = errors.New("tool invocation failed")
	ErrBindingGeneration = errors.New("binding generation failed")
)

// Error is a failure of one kind, optionally tied to a path and a phase.
type Error struct {
	Kind  error
	Phase string
	Op    string
	Path  string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if e.Phase != "" {
		b.WriteString("error ")
		b.WriteString(e.Phase)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ConfigMissing reports a mandatory configuration field that was not set.
func ConfigMissing(field string) error {
	return &Error{Kind: ErrConfigMissing, Op: field + " not set"}
}

// NotADirectory reports a path that does not exist or is not a directory.
func NotADirectory(path string) error {
	return &Error{Kind: ErrNotADirectory, Path: path}
}

// IO wraps a filesystem failure of op on path.
func IO(op, path string, err error) error {
	return &Error{Kind: ErrIO, Op: op, Path: path, Err: err}
}

// BindingGeneration wraps a failure of the binding generator.
func BindingGeneration(err error) error {
	return &Error{Kind: ErrBindingGeneration, Err: err}
}

// ToolError reports an external process that could not be started or
// exited unsuccessfully.
type ToolError struct {
	Phase   string
	Command []string

	// Status is the exit status when the process ran; empty when it
	// failed to start.
	Status string
	Err    error
}

func (e *ToolError) Error() string {
	phase := e.Phase
	if phase == "" {
		phase = "running tool"
	}
	label, detail := "Failed to execute", ""
	if e.Err != nil {
		detail = e.Err.Error()
	}
	if e.Status != "" {
		label, detail = "Exit status", e.Status
	}
	return fmt.Sprintf("error %s:\n    Command: %s\n    %s: %s",
		phase, shellquote.Join(e.Command...), label, detail)
}

func (e *ToolError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrToolInvocation}
	}
	return []error{ErrToolInvocation, e.Err}
}

// InPhase stamps phase onto the typed errors in err's chain that do not
// carry one yet. Errors of other types are wrapped with the phase as a
// prefix.
func InPhase(phase string, err error) error {
	if err == nil {
		return nil
	}
	typed := false
	var e *Error
	if errors.As(err, &e) {
		typed = true
		if e.Phase == "" {
			e.Phase = phase
		}
	}
	var te *ToolError
	if errors.As(err, &te) {
		typed = true
		if te.Phase == "" {
			te.Phase = phase
		}
	}
	if typed {
		return err
	}
	return fmt.Errorf("error %s: %w", phase, err)
}

// Phase returns the outermost phase recorded in err, if any.
func Phase(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Phase != "" {
		return e.Phase
	}
	var te *ToolError
	if errors.As(err, &te) {
		return te.Phase
	}
	return ""
}
