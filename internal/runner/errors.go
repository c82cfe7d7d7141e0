package runner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCommand is returned when Run is called without a program name.
var ErrEmptyCommand = errors.New("empty command")

// ErrCommandFailed is matched by every *CommandError.
var ErrCommandFailed = errors.New("command failed")

// ErrMissingDependency is matched by every *MissingDependencyError.
var ErrMissingDependency = errors.New("required program not found")

// CommandError reports a command that exited with a non-zero status or could
// not be started at all (ExitCode -1).
type CommandError struct {
	Argv     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("failed to execute '%s' (%d)", strings.Join(e.Argv, " "), e.ExitCode)
}

func (e *CommandError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCommandFailed}
	}
	return []error{ErrCommandFailed, e.Err}
}

// MissingDependencyError names a program that is not on PATH.
type MissingDependencyError struct {
	Program string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("failed to find required program: %s", e.Program)
}

func (e *MissingDependencyError) Unwrap() error { return ErrMissingDependency }
