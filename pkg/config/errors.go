package config

import (
	"fmt"

	"github.com/kinnison/git-sync/pkg/common/err"
)

const (
	pkgName = "config"

	// Package-specific error codes
	CodeInvalidFormatErr = err.CodeInvalidFormat
	CodeIOErr            = err.CodeIO
)

// ConfigError represents a configuration-related error with detailed context
type ConfigError struct {
	base  *err.Error
	Path  string // file path if applicable
	Key   string // config key if applicable
	Level string // config level if applicable
}

// NewConfigError creates a new ConfigError
func NewConfigError(op, code, key, path, level string, underlying error) *ConfigError {
	return &ConfigError{
		base:  err.New(pkgName, code, op, "", underlying),
		Path:  path,
		Key:   key,
		Level: level,
	}
}

// NewInvalidValueError reports a value that does not fit its key.
func NewInvalidValueError(entry *ConfigEntry, reason error) *ConfigError {
	path := ""
	if entry.Source.IsFile() {
		path = entry.Source.String()
	}
	return NewConfigError("validate", CodeInvalidFormatErr, entry.Key, path, entry.Level.String(), reason)
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := e.base.Error()
	if e.Key != "" {
		msg += fmt.Sprintf(" [key=%s]", e.Key)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" [path=%s]", e.Path)
	}
	if e.Level != "" {
		msg += fmt.Sprintf(" [level=%s]", e.Level)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.base
}

// Code returns the error code.
func (e *ConfigError) Code() string {
	return e.base.Code
}

// ErrInvalidFormat matches any configuration parse or validation failure.
var ErrInvalidFormat = &err.Error{Code: CodeInvalidFormatErr}

// IsInvalidFormat returns true if the error is a parse or validation failure
func IsInvalidFormat(e error) bool {
	return err.IsCode(e, CodeInvalidFormatErr)
}
