// Package minikube maps host paths to the paths minikube exposes inside its VM.
//
// Minikube mounts a single host folder into the VM by default: /home on
// Linux (as /hosthome) and /Users on macOS (at the same path). Any folder
// outside that root is invisible to pods running in the cluster.
package minikube

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrInvalidMount is returned when a host path is not under the mounted host folder.
var ErrInvalidMount = errors.New("parent folder is not mounted into the VM")

// ErrUnsupportedPlatform is returned when the host OS has no known mount convention.
var ErrUnsupportedPlatform = errors.New("cannot identify mounted host folder, unknown OS")

// HostOS identifies the operating system kplay runs on.
type HostOS string

const (
	Linux   HostOS = "linux"
	MacOSX  HostOS = "macosx"
	Unknown HostOS = "unknown"
)

// DetectOS returns the HostOS for the running binary.
func DetectOS() HostOS {
	return osFromGOOS(runtime.GOOS)
}

func osFromGOOS(goos string) HostOS {
	switch goos {
	case "linux":
		return Linux
	case "darwin":
		return MacOSX
	default:
		return Unknown
	}
}

// Translator converts host paths for a fixed host OS.
type Translator struct {
	OS HostOS
}

// NewTranslator returns a Translator for the current host OS.
func NewTranslator() Translator {
	return Translator{OS: DetectOS()}
}

// HostFolder returns the host folder minikube mounts into the VM.
func (t Translator) HostFolder() (string, error) {
	switch t.OS {
	case Linux:
		return "/home/", nil
	case MacOSX:
		return "/Users/", nil
	default:
		return "", ErrUnsupportedPlatform
	}
}

// VMFolder returns the mount point of HostFolder inside the VM.
func (t Translator) VMFolder() (string, error) {
	switch t.OS {
	case Linux:
		return "/hosthome/", nil
	case MacOSX:
		return "/Users/", nil
	default:
		return "", ErrUnsupportedPlatform
	}
}

// HostPathInVM returns the VM path that corresponds to path on the host.
// Only the host folder prefix is replaced; the remainder is kept verbatim.
func (t Translator) HostPathInVM(path string) (string, error) {
	host, err := t.HostFolder()
	if err != nil {
		return "", err
	}
	vm, err := t.VMFolder()
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(path, host) {
		return "", fmt.Errorf("find mount point for %q: %w", path, ErrInvalidMount)
	}
	return vm + strings.TrimPrefix(path, host), nil
}
