// Package paths resolves the on-disk locations kplay reads and writes.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// HomeEnv overrides the data directory when set.
	HomeEnv = "KPLAY_HOME"

	defaultDataDir   = ".kplay"
	globalConfigName = "config"
	localConfigName  = ".kplay"
)

// Dirs holds the resolved kplay directories.
type Dirs struct {
	// Data is ~/.kplay unless KPLAY_HOME is set.
	Data string
}

// DefaultDirs resolves Dirs from the environment and the user's home
// directory. The result is absolute whenever the home directory is known.
func DefaultDirs() Dirs {
	if v := os.Getenv(HomeEnv); v != "" {
		return Dirs{Data: v}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Dirs{Data: defaultDataDir}
	}
	return Dirs{Data: filepath.Join(home, defaultDataDir)}
}

// ConfigFile returns the path to the global config file.
func (d Dirs) ConfigFile() string {
	return filepath.Join(d.Data, globalConfigName)
}

// EnsureDirs creates the data directory if it does not exist. It is created
// with mode 0700 so that only the owning user can read it.
func (d Dirs) EnsureDirs() error {
	if err := os.MkdirAll(d.Data, 0o700); err != nil {
		return fmt.Errorf("create directory %s: %w", d.Data, err)
	}
	return nil
}

// LocalConfigFile returns the per-project config file inside projectDir.
func LocalConfigFile(projectDir string) string {
	return filepath.Join(projectDir, localConfigName)
}
