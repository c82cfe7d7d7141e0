package pod

import "errors"

// ErrVolumeConfig is returned when a volumes entry is not "<host_path>:<container_path>".
var ErrVolumeConfig = errors.New("invalid volume definition")
