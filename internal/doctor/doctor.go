// Package doctor checks that the host has what kplay needs.
package doctor

import (
	"context"
	"fmt"

	"github.com/kukushkin/kplay/internal/minikube"
	"github.com/kukushkin/kplay/internal/paths"
	"github.com/kukushkin/kplay/internal/runner"
)

// RequiredPrograms are the programs every pod operation shells out to.
var RequiredPrograms = []string{"minikube", "kubectl"}

// CheckResult holds the outcome of a single check.
type CheckResult struct {
	Name     string
	OK       bool
	Message  string
	HowToFix string
}

// AssertRequirements returns the first missing required program as a
// *runner.MissingDependencyError.
func AssertRequirements(ctx context.Context, r runner.Interface) error {
	for _, name := range RequiredPrograms {
		if err := runner.AssertProgramPresent(ctx, r, name); err != nil {
			return err
		}
	}
	return nil
}

// RunChecks performs all checks and returns the results. It never returns
// an error itself; pass/fail is encoded in each CheckResult.
func RunChecks(ctx context.Context, r runner.Interface, hostOS minikube.HostOS, dirs paths.Dirs) []CheckResult {
	results := make([]CheckResult, 0, len(RequiredPrograms)+2)
	for _, name := range RequiredPrograms {
		results = append(results, checkProgram(ctx, r, name))
	}
	results = append(results, checkPlatform(hostOS), checkDataDir(dirs))
	return results
}

func checkProgram(ctx context.Context, r runner.Interface, name string) CheckResult {
	if err := runner.AssertProgramPresent(ctx, r, name); err != nil {
		return CheckResult{
			Name:     name,
			OK:       false,
			Message:  err.Error(),
			HowToFix: installHint(name),
		}
	}
	return CheckResult{Name: name, OK: true, Message: fmt.Sprintf("%s found", name)}
}

func checkPlatform(hostOS minikube.HostOS) CheckResult {
	const name = "host folder mount"
	tr := minikube.Translator{OS: hostOS}
	host, err := tr.HostFolder()
	if err != nil {
		return CheckResult{
			Name:     name,
			OK:       false,
			Message:  err.Error(),
			HowToFix: "kplay supports Linux and macOS hosts only.",
		}
	}
	vm, _ := tr.VMFolder()
	return CheckResult{
		Name:    name,
		OK:      true,
		Message: fmt.Sprintf("%s on the host is mounted at %s in the VM", host, vm),
	}
}

func checkDataDir(dirs paths.Dirs) CheckResult {
	const name = "data directory"
	if err := dirs.EnsureDirs(); err != nil {
		return CheckResult{
			Name:     name,
			OK:       false,
			Message:  fmt.Sprintf("cannot create kplay directory: %v", err),
			HowToFix: fmt.Sprintf("Check that your home directory is writable, or point %s at a writable folder.", paths.HomeEnv),
		}
	}
	return CheckResult{Name: name, OK: true, Message: fmt.Sprintf("%s is ready", dirs.Data)}
}

// installHint returns a human-friendly install hint for a known program.
func installHint(bin string) string {
	hints := map[string]string{
		"minikube": "Install minikube: https://minikube.sigs.k8s.io/docs/start/",
		"kubectl":  "Install kubectl: https://kubernetes.io/docs/tasks/tools/ (or use `minikube kubectl`)",
	}
	if hint, ok := hints[bin]; ok {
		return hint
	}
	return fmt.Sprintf("Install %q and ensure it is on your PATH.", bin)
}
