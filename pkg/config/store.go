package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kinnison/git-sync/pkg/repository/scpath"
)

// Store holds the entries of one TOML configuration file.
//
// Nested tables flatten to dotted keys ("[transfer] workers = 8" becomes
// "transfer.workers"); each element of an array is its own entry under
// the same key.
type Store struct {
	path     scpath.AbsolutePath
	level    ConfigLevel
	required bool
	entries  map[string][]*ConfigEntry
}

// NewStore creates a store for the file at path. A missing file loads as
// empty unless required is set.
func NewStore(path scpath.AbsolutePath, level ConfigLevel, required bool) *Store {
	return &Store{
		path:     path,
		level:    level,
		required: required,
		entries:  make(map[string][]*ConfigEntry),
	}
}

// Load reads and parses the configuration file
func (s *Store) Load() error {
	content, err := os.ReadFile(s.path.String())
	if errors.Is(err, os.ErrNotExist) && !s.required {
		s.entries = make(map[string][]*ConfigEntry)
		return nil
	}
	if err != nil {
		return NewConfigError("load", CodeIOErr, "", s.path.String(), s.level.String(), err)
	}

	entries, err := s.parse(string(content))
	if err != nil {
		return err
	}
	s.entries = entries
	return nil
}

func (s *Store) parse(content string) (map[string][]*ConfigEntry, error) {
	var raw map[string]any
	if _, err := toml.Decode(content, &raw); err != nil {
		var pe toml.ParseError
		if errors.As(err, &pe) {
			err = fmt.Errorf("line %d: %s", pe.Position.Line, pe.Message)
		}
		return nil, NewConfigError("parse", CodeInvalidFormatErr, "", s.path.String(), s.level.String(), err)
	}

	entries := make(map[string][]*ConfigEntry)
	source := NewFileSource(s.path)
	var walk func(prefix string, table map[string]any) error
	walk = func(prefix string, table map[string]any) error {
		for k, v := range table {
			key := strings.ToLower(k)
			if prefix != "" {
				key = prefix + "." + key
			}
			if sub, ok := v.(map[string]any); ok {
				if err := walk(key, sub); err != nil {
					return err
				}
				continue
			}
			values, err := scalarValues(v)
			if err != nil {
				return NewConfigError("parse", CodeInvalidFormatErr, key, s.path.String(), s.level.String(), err)
			}
			for _, val := range values {
				entries[key] = append(entries[key], NewEntry(key, val, s.level, source))
			}
		}
		return nil
	}
	if err := walk("", raw); err != nil {
		return nil, err
	}
	return entries, nil
}

func scalarValues(v any) ([]string, error) {
	switch x := v.(type) {
	case string:
		return []string{x}, nil
	case int64:
		return []string{strconv.FormatInt(x, 10)}, nil
	case float64:
		return []string{strconv.FormatFloat(x, 'f', -1, 64)}, nil
	case bool:
		return []string{strconv.FormatBool(x)}, nil
	case time.Time:
		return []string{x.Format(time.RFC3339)}, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, elem := range x {
			if _, nested := elem.([]any); nested {
				return nil, fmt.Errorf("nested arrays are not supported")
			}
			vals, err := scalarValues(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, vals...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// GetEntries returns all entries for key, or nil.
func (s *Store) GetEntries(key string) []*ConfigEntry {
	return s.entries[strings.ToLower(key)]
}

// Keys returns the keys present in the file, sorted.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the file path of the store
func (s *Store) Path() scpath.AbsolutePath {
	return s.path
}

// Level returns the configuration level of the store
func (s *Store) Level() ConfigLevel {
	return s.level
}
