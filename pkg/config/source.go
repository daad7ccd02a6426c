package config

import "github.com/kinnison/git-sync/pkg/repository/scpath"

// ConfigSource represents the source of a configuration entry
// Can be either a special source (command-line, builtin) or a file path
type ConfigSource string

const (
	// CommandLineSource represents configuration from command-line flags
	CommandLineSource ConfigSource = "command-line"

	// BuiltinSource represents hardcoded default configuration
	BuiltinSource ConfigSource = "builtin"
)

// NewFileSource creates a ConfigSource from a file path
func NewFileSource(path scpath.AbsolutePath) ConfigSource {
	return ConfigSource(path.String())
}

// String returns the string representation of the source
func (s ConfigSource) String() string {
	return string(s)
}

// IsFile returns true if this is a file-based source
func (s ConfigSource) IsFile() bool {
	return s != "" && s != CommandLineSource && s != BuiltinSource
}
