package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ConfigEntry represents a single configuration entry with its value and metadata
type ConfigEntry struct {
	Key    string       // Configuration key (e.g., "transfer.workers")
	Value  string       // String value
	Level  ConfigLevel  // Configuration level
	Source ConfigSource // Source of this configuration (command-line, builtin, or file path)
}

// NewEntry creates a new configuration entry
func NewEntry(key, value string, level ConfigLevel, source ConfigSource) *ConfigEntry {
	return &ConfigEntry{Key: key, Value: value, Level: level, Source: source}
}

// AsInt converts the value to an integer
func (e *ConfigEntry) AsInt() (int, error) {
	val, err := strconv.Atoi(strings.TrimSpace(e.Value))
	if err != nil {
		return 0, NewInvalidValueError(e, fmt.Errorf("%q is not an integer", e.Value))
	}
	return val, nil
}

// AsBoolean converts the value to a boolean
// Accepts: "true", "yes", "1", "on" (case-insensitive) as true
// Accepts: "false", "no", "0", "off" (case-insensitive) as false
func (e *ConfigEntry) AsBoolean() (bool, error) {
	switch strings.ToLower(strings.TrimSpace(e.Value)) {
	case "true", "yes", "1", "on":
		return true, nil
	case "false", "no", "0", "off":
		return false, nil
	default:
		return false, NewInvalidValueError(e, fmt.Errorf("%q is not a boolean", e.Value))
	}
}

// Clone creates a copy of the configuration entry
func (e *ConfigEntry) Clone() *ConfigEntry {
	c := *e
	return &c
}

// Values returns the values of entries in order.
func Values(entries []*ConfigEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Value)
	}
	return out
}
