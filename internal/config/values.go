// Package config loads and merges kplay configuration.
//
// Configuration comes in two layers: the global file in the kplay data
// directory and an optional .kplay file in the project folder. Both are
// merged over the built-in defaults and expanded with per-pod template
// variables before being decoded into a typed Config.
package config

import (
	"sort"
	"strings"
)

// Values is a generic configuration tree. Nested mappings are Values too.
// Functions in this package never mutate the Values they are given.
type Values map[string]any

// Defaults returns a fresh copy of the built-in configuration.
func Defaults() Values {
	return Values{
		"image":             "dev",
		"mount_path":        "/${name}",
		"shell":             "/bin/bash",
		"shell_args":        []any{"-c", `cd /${name}; exec "${SHELL:-sh}"`},
		"stop_grace_period": 5,
		"etc_hosts":         []any{}, // <ip> <alias1> [<alias2> ...]
	}
}

// Get returns the value stored at key. Mappings are returned as Values so
// lookups can be chained. The second result is false when key is absent.
func (v Values) Get(key string) (any, bool) {
	val, ok := v[key]
	if !ok {
		return nil, false
	}
	if m, ok := asValues(val); ok {
		return m, true
	}
	return val, true
}

// Copy returns a deep copy of v.
func (v Values) Copy() Values {
	if v == nil {
		return Values{}
	}
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = copyValue(val)
	}
	return out
}

// Merge returns base with over applied on top. Mappings present on both
// sides are merged key by key; every other value from over replaces the one
// in base wholesale.
func Merge(base, over Values) Values {
	out := base.Copy()
	for k, val := range over {
		if om, ok := asValues(val); ok {
			if bm, ok := asValues(out[k]); ok {
				out[k] = Merge(bm, om)
				continue
			}
		}
		out[k] = copyValue(val)
	}
	return out
}

// Vars holds template variables, keyed by placeholder name.
type Vars map[string]string

// TemplateVars returns the variables available to pod configuration.
func TemplateVars(name, pathHost, pathVM string) Vars {
	return Vars{
		"name":      name,
		"path_host": pathHost,
		"path_vm":   pathVM,
	}
}

// ExpandTemplates returns a copy of v with every ${var} placeholder in string
// values, string list elements and nested mappings replaced by vars[var].
// Substituted text is not scanned again and unknown placeholders are kept.
func ExpandTemplates(v Values, vars Vars) Values {
	return expandValues(v, newExpander(vars))
}

// ExpandString expands the placeholders of a single string.
func ExpandString(s string, vars Vars) string {
	return newExpander(vars).Replace(s)
}

func newExpander(vars Vars) *strings.Replacer {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "${"+name+"}", vars[name])
	}
	return strings.NewReplacer(pairs...)
}

func expandValues(v Values, r *strings.Replacer) Values {
	out := make(Values, len(v))
	for k, val := range v {
		switch t := val.(type) {
		case string:
			out[k] = r.Replace(t)
		case []any:
			list := make([]any, len(t))
			for i, item := range t {
				if s, ok := item.(string); ok {
					list[i] = r.Replace(s)
				} else {
					list[i] = copyValue(item)
				}
			}
			out[k] = list
		case []string:
			list := make([]string, len(t))
			for i, s := range t {
				list[i] = r.Replace(s)
			}
			out[k] = list
		default:
			if m, ok := asValues(val); ok {
				out[k] = expandValues(m, r)
			} else {
				out[k] = copyValue(val)
			}
		}
	}
	return out
}

func asValues(val any) (Values, bool) {
	switch m := val.(type) {
	case Values:
		return m, true
	case map[string]any:
		return Values(m), true
	}
	return nil, false
}

func copyValue(val any) any {
	switch t := val.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	if m, ok := asValues(val); ok {
		return m.Copy()
	}
	return val
}
