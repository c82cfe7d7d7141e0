// Package runner executes external programs such as kubectl and minikube.
//
// Commands are always passed to the OS as a discrete argument vector and are
// never interpreted by a shell.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options controls how a single command is run.
type Options struct {
	// Echo writes the command line to stdout before running it.
	Echo          bool
	// CaptureOutput echoes the captured output to stdout once the command exits.
	CaptureOutput bool
	// AttachTTY connects the command to the caller's terminal. The exit status
	// of an attached command is not treated as a failure.
	AttachTTY     bool
}

// Interface is implemented by anything that can run a command.
type Interface interface {
	// Run blocks until argv exits and returns its combined output. Output is
	// empty when AttachTTY is set.
	Run(ctx context.Context, argv []string, opts Options) (string, error)
}

// Exec runs commands as child processes of kplay.
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var _ Interface = (*Exec)(nil)

// New returns an Exec bound to the process standard streams.
func New() *Exec {
	return &Exec{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes argv according to opts.
func (e *Exec) Run(ctx context.Context, argv []string, opts Options) (string, error) {
	if len(argv) == 0 || argv[0] == "" {
		return "", ErrEmptyCommand
	}
	line := strings.Join(argv, " ")
	if opts.Echo {
		fmt.Fprintln(e.stdout(), line)
	}
	logrus.Debugf("running command: %v", argv)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	if opts.AttachTTY {
		cmd.Stdin = e.Stdin
		cmd.Stdout = e.stdout()
		cmd.Stderr = e.stderr()
		if err := cmd.Run(); err != nil {
			logrus.Debugf("interactive command %q ended: %v", line, err)
		}
		return "", nil
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	if opts.CaptureOutput && out.Len() > 0 {
		fmt.Fprint(e.stdout(), out.String())
	}
	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		logrus.Debugf("command %q failed with exit code %d", line, code)
		logrus.Debugf("output: %s", out.String())
		return out.String(), &CommandError{Argv: argv, ExitCode: code, Output: out.String(), Err: err}
	}
	return out.String(), nil
}

func (e *Exec) stdout() io.Writer {
	if e.Stdout == nil {
		return io.Discard
	}
	return e.Stdout
}

func (e *Exec) stderr() io.Writer {
	if e.Stderr == nil {
		return io.Discard
	}
	return e.Stderr
}

// AssertProgramPresent fails with a *MissingDependencyError unless `which name`
// succeeds.
func AssertProgramPresent(ctx context.Context, r Interface, name string) error {
	if _, err := r.Run(ctx, []string{"which", name}, Options{}); err != nil {
		return &MissingDependencyError{Program: name}
	}
	return nil
}
