package config

// ConfigLevel represents the hierarchy level of a configuration entry
// Ordered by precedence (highest to lowest)
type ConfigLevel int

const (
	// CommandLineLevel holds values set from flags (highest precedence)
	CommandLineLevel ConfigLevel = iota

	// FileLevel is the file named with --config
	FileLevel

	// UserLevel is $XDG_CONFIG_HOME/git-sync/config.toml
	UserLevel

	// BuiltinLevel represents hardcoded default values (lowest precedence)
	BuiltinLevel
)

// String returns the string representation of the configuration level
func (l ConfigLevel) String() string {
	switch l {
	case CommandLineLevel:
		return "command-line"
	case FileLevel:
		return "file"
	case UserLevel:
		return "user"
	case BuiltinLevel:
		return "builtin"
	default:
		return "unknown"
	}
}

// IsValid returns true if the configuration level is valid
func (l ConfigLevel) IsValid() bool {
	return l >= CommandLineLevel && l <= BuiltinLevel
}

// IsFile reports whether values at this level come from a file.
func (l ConfigLevel) IsFile() bool {
	return l == FileLevel || l == UserLevel
}
