package pod

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kukushkin/kplay/internal/log"
	"github.com/kukushkin/kplay/internal/runner"
)

// DefaultSettle is how long Start waits after apply for the pod to come up.
const DefaultSettle = time.Second

// Controller starts, stops and opens shells into pods. It drives one pod at
// a time and every call blocks until kubectl returns.
type Controller struct {
	Runner  runner.Interface
	// Settle is the pause after a successful apply.
	Settle  time.Duration
	// TempDir holds the transient manifest file. Empty means os.TempDir.
	TempDir string
}

// NewController returns a Controller using r with the default settle delay.
func NewController(r runner.Interface) *Controller {
	return &Controller{Runner: r, Settle: DefaultSettle}
}

// applyArgs returns the kubectl arguments that submit a manifest file.
func applyArgs(manifestPath string) []string {
	return []string{"kubectl", "apply", "-f", manifestPath}
}

// deleteArgs returns the kubectl arguments that delete a pod.
func deleteArgs(name string, gracePeriod int, force bool) []string {
	args := []string{"kubectl", "delete", "pod", name, "--grace-period=" + strconv.Itoa(gracePeriod)}
	if force {
		args = append(args, "--force")
	}
	return args
}

// execArgs returns the kubectl arguments for an interactive session.
func execArgs(name, shell string, shellArgs []string) []string {
	args := []string{"kubectl", "exec", "-ti", name, "--", shell}
	return append(args, shellArgs...)
}

// getPodArgs returns the kubectl arguments that query a pod.
func getPodArgs(name string) []string {
	return []string{"kubectl", "get", "pods", name}
}

var minikubeStatusArgs = []string{"minikube", "status"}

// Start applies the pod manifest and waits for the pod to settle. The
// manifest lives in a temporary file that is removed before Start returns,
// whether apply succeeded or not. A failed apply is not rolled back.
func (c *Controller) Start(ctx context.Context, p *Pod) error {
	data, err := p.ManifestYAML()
	if err != nil {
		return err
	}

	log.Info(fmt.Sprintf("Starting pod %s (image %s)", p.Name, p.Image()))
	err = c.withManifestFile(p.Name, data, func(path string) error {
		_, err := c.Runner.Run(ctx, applyArgs(path), runner.Options{Echo: p.Options.Verbose, CaptureOutput: true})
		return err
	})
	if err != nil {
		return err
	}

	if err := sleep(ctx, c.Settle); err != nil {
		return err
	}
	log.Ok(fmt.Sprintf("Pod %s started", p.Name))
	return nil
}

// Stop deletes the pod. It does not check that the pod exists first.
func (c *Controller) Stop(ctx context.Context, p *Pod) error {
	log.Info(fmt.Sprintf("Stopping pod %s", p.Name))
	args := deleteArgs(p.Name, p.Config.StopGracePeriod, p.Options.Force)
	if _, err := c.Runner.Run(ctx, args, runner.Options{Echo: p.Options.Verbose, CaptureOutput: true}); err != nil {
		return err
	}
	log.Ok(fmt.Sprintf("Pod %s stopped", p.Name))
	return nil
}

// Shell runs the configured shell inside the pod and blocks until the user
// leaves it. The session's own exit status is not reported.
func (c *Controller) Shell(ctx context.Context, p *Pod) error {
	args := execArgs(p.Name, p.Config.Shell, p.Config.ShellArgs)
	_, err := c.Runner.Run(ctx, args, runner.Options{Echo: p.Options.Verbose, AttachTTY: true})
	return err
}

// Play starts the pod, opens a shell and stops the pod once the shell ends.
// Nothing else runs if Start fails; Stop runs even if Shell fails.
func (c *Controller) Play(ctx context.Context, p *Pod) error {
	if err := c.Start(ctx, p); err != nil {
		return err
	}
	shellErr := c.Shell(ctx, p)
	return errors.Join(shellErr, c.Stop(ctx, p))
}

// Status prints the cluster status followed by the pod, if it exists.
func (c *Controller) Status(ctx context.Context, p *Pod) error {
	opts := runner.Options{Echo: true, CaptureOutput: true}
	if _, err := c.Runner.Run(ctx, minikubeStatusArgs, opts); err != nil {
		return err
	}
	if _, err := c.Runner.Run(ctx, getPodArgs(p.Name), opts); err != nil {
		// A pod that does not exist yet is not a failure.
		logrus.Debugf("get pod %s: %v", p.Name, err)
	}
	return nil
}

// withManifestFile writes data to a fresh temporary file, calls fn with its
// path and removes the file on every return path.
func (c *Controller) withManifestFile(name string, data []byte, fn func(path string) error) error {
	f, err := os.CreateTemp(c.TempDir, "kplay-"+name+"-*.yaml")
	if err != nil {
		return fmt.Errorf("create manifest file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logrus.Debugf("remove manifest file %s: %v", path, err)
		}
	}()
	logrus.Debugf("manifest file: %s", path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write manifest file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close manifest file: %w", err)
	}
	return fn(path)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
