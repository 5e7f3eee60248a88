package voxel

import (
	"errors"
	"fmt"
)

// ErrConfig is matched by every configuration error: bad spacing, a bounds
// override count other than 0 or 6, non-finite values, degenerate bounds.
var ErrConfig = errors.New("configuration error")

// ConfigError reports which setting was rejected.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrConfig, e.Field, e.Msg)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
