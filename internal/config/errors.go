package config

import "errors"

// ErrNotFound is returned when a requested config file does not exist or
// cannot be parsed.
var ErrNotFound = errors.New("not found")
