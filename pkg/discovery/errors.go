package discovery

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Next/Wait after the handle was closed by
// the caller or the stream ended.
var ErrClosed = errors.New("discovery: operation closed")

// ConfigError reports an invalid flag combination or malformed input,
// detected before any native call was attempted.
type ConfigError struct {
	Op     string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("discovery: invalid %s configuration: %s", e.Op, e.Reason)
}

func configErrf(op, format string, args ...any) *ConfigError {
	return &ConfigError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
