package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kukushkin/kplay/internal/paths"
)

// Load reads the YAML file at path and merges it over defaults. A missing
// file is not an error: a copy of defaults is returned instead.
func Load(path string, defaults Values) (Values, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaults.Copy(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	file, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	return Merge(defaults, file), nil
}

// Parse decodes a YAML document into Values. An empty document yields empty
// Values. The source is used only for error messages.
func Parse(data []byte, source string) (Values, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: YAML parse error: %v", ErrParse, source, err)
	}
	if doc == nil {
		return Values{}, nil
	}
	raw, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: top level must be a mapping", ErrParse, source)
	}
	v, err := normalize(raw, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, source, err)
	}
	return v, nil
}

// normalize converts decoded YAML mappings into Values, rejecting mappings
// with non-string keys.
func normalize(m map[string]any, prefix string) (Values, error) {
	out := make(Values, len(m))
	for k, val := range m {
		nv, err := normalizeValue(val, prefix+k)
		if err != nil {
			return nil, err
		}
		out[k] = nv
	}
	return out, nil
}

func normalizeValue(val any, key string) (any, error) {
	switch t := val.(type) {
	case map[string]any:
		return normalize(t, key+".")
	case map[any]any:
		return nil, fmt.Errorf("%s: mapping keys must be strings", key)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			nv, err := normalizeValue(item, fmt.Sprintf("%s[%d]", key, i))
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	}
	return val, nil
}

// Global returns the built-in defaults merged with the global config file.
func Global(dirs paths.Dirs) (Values, error) {
	return Load(dirs.ConfigFile(), Defaults())
}

// Local returns the global configuration merged with the .kplay file of the
// project folder.
func Local(dirs paths.Dirs, projectDir string) (Values, error) {
	global, err := Global(dirs)
	if err != nil {
		return nil, err
	}
	return Load(paths.LocalConfigFile(projectDir), global)
}

// WriteDefaults writes the built-in defaults to path unless a file already
// exists there. It reports whether a file was written.
func WriteDefaults(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := Defaults().Marshal()
	if err != nil {
		return false, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close %s: %w", path, err)
	}
	return true, nil
}

// Marshal renders v as YAML with keys in sorted order.
func (v Values) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(map[string]any(v))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
