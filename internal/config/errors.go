package config

import "errors"

// ErrParse is returned when a configuration file is not a valid YAML mapping
// or its values do not fit the expected types.
var ErrParse = errors.New("invalid configuration")
