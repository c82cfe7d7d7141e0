package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSuccessReturnsOutput(t *testing.T) {
	var stdout bytes.Buffer
	r := &Exec{Stdout: &stdout}

	out, err := r.Run(context.Background(), []string{"sh", "-c", "echo hello; echo oops >&2"}, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "oops")
	assert.Empty(t, stdout.String(), "output must not be echoed without CaptureOutput")
}

func TestRunNonZeroExit(t *testing.T) {
	r := &Exec{}
	argv := []string{"sh", "-c", "echo broken; exit 2"}

	out, err := r.Run(context.Background(), argv, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCommandFailed))

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 2, cmdErr.ExitCode)
	assert.Equal(t, argv, cmdErr.Argv)
	assert.Contains(t, cmdErr.Output, "broken")
	assert.Contains(t, out, "broken")
	assert.Contains(t, err.Error(), "sh -c echo broken; exit 2")
	assert.Contains(t, err.Error(), "(2)")
}

func TestRunProgramNotFound(t *testing.T) {
	r := &Exec{}
	_, err := r.Run(context.Background(), []string{"kplay-no-such-program-xyz"}, Options{})

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, -1, cmdErr.ExitCode)
	assert.True(t, errors.Is(err, ErrCommandFailed))
}

func TestRunEmptyCommand(t *testing.T) {
	r := &Exec{}
	_, err := r.Run(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, err = r.Run(context.Background(), []string{""}, Options{})
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestRunEcho(t *testing.T) {
	var stdout bytes.Buffer
	r := &Exec{Stdout: &stdout}

	_, err := r.Run(context.Background(), []string{"true"}, Options{Echo: true})
	require.NoError(t, err)
	assert.Equal(t, "true\n", stdout.String())
}

func TestRunCaptureOutput(t *testing.T) {
	var stdout bytes.Buffer
	r := &Exec{Stdout: &stdout}

	_, err := r.Run(context.Background(), []string{"sh", "-c", "echo pods"}, Options{Echo: true, CaptureOutput: true})
	require.NoError(t, err)
	assert.Equal(t, "sh -c echo pods\npods\n", stdout.String())
}

func TestRunArgumentsAreNotShellInterpreted(t *testing.T) {
	r := &Exec{}
	out, err := r.Run(context.Background(), []string{"echo", "$HOME", "a;b", "`id`"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "$HOME a;b `id`", strings.TrimSpace(out))
}

func TestRunAttachTTYIgnoresExitStatus(t *testing.T) {
	var stdout bytes.Buffer
	r := &Exec{Stdin: strings.NewReader(""), Stdout: &stdout}

	out, err := r.Run(context.Background(), []string{"sh", "-c", "echo session; exit 3"}, Options{AttachTTY: true})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "session\n", stdout.String())
}

func TestAssertProgramPresent(t *testing.T) {
	r := &Exec{}
	require.NoError(t, AssertProgramPresent(context.Background(), r, "sh"))

	err := AssertProgramPresent(context.Background(), r, "kplay-no-such-program-xyz")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDependency)

	var missing *MissingDependencyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "kplay-no-such-program-xyz", missing.Program)
	assert.Contains(t, err.Error(), "kplay-no-such-program-xyz")
}
