package config

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/kinnison/git-sync/pkg/common/logger"
	"github.com/kinnison/git-sync/pkg/repository/sourcerepo"
)

// Recognised keys.
const (
	KeyWorkers   = "transfer.workers"
	KeyFullWalk  = "transfer.full_walk"
	KeyRefs      = "transfer.refs"
	KeyBackend   = "transfer.backend"
	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
)

// Settings is the validated, typed view of the configuration.
type Settings struct {
	// Workers is the copy pool size; 0 means one per CPU.
	Workers   int
	FullWalk  bool
	Refs      []string
	Backend   sourcerepo.Backend
	LogLevel  logger.Level
	LogFormat logger.Format
}

// Settings resolves and validates every recognised key. Unknown keys in
// a configuration file are rejected so that typos do not go unnoticed.
// All problems are reported together.
func (m *Manager) Settings() (*Settings, error) {
	var errs []error
	s := &Settings{}

	if e := m.checkUnknownKeys(); e != nil {
		errs = append(errs, e...)
	}

	if entry := m.Get(KeyWorkers); entry != nil {
		n, e := entry.AsInt()
		switch {
		case e != nil:
			errs = append(errs, e)
		case n < 0:
			errs = append(errs, NewInvalidValueError(entry, fmt.Errorf("must not be negative")))
		default:
			s.Workers = n
		}
	}

	if entry := m.Get(KeyFullWalk); entry != nil {
		b, e := entry.AsBoolean()
		if e != nil {
			errs = append(errs, e)
		}
		s.FullWalk = b
	}

	for _, entry := range m.GetAll(KeyRefs) {
		if e := validatePattern(entry.Value); e != nil {
			errs = append(errs, NewInvalidValueError(entry, e))
			continue
		}
		s.Refs = append(s.Refs, entry.Value)
	}

	if entry := m.Get(KeyBackend); entry != nil {
		b, e := sourcerepo.ParseBackend(entry.Value)
		if e != nil {
			errs = append(errs, NewInvalidValueError(entry, e))
		}
		s.Backend = b
	}

	if entry := m.Get(KeyLogLevel); entry != nil {
		l, e := logger.ParseLevel(entry.Value)
		if e != nil {
			errs = append(errs, NewInvalidValueError(entry, e))
		}
		s.LogLevel = l
	}

	if entry := m.Get(KeyLogFormat); entry != nil {
		f, e := logger.ParseFormat(entry.Value)
		if e != nil {
			errs = append(errs, NewInvalidValueError(entry, e))
		}
		s.LogFormat = f
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// LoggerConfig returns the logger settings.
func (s *Settings) LoggerConfig() logger.Config {
	return logger.Config{Level: s.LogLevel, Format: s.LogFormat}
}

func (m *Manager) checkUnknownKeys() []error {
	known := map[string]bool{
		KeyWorkers: true, KeyFullWalk: true, KeyRefs: true,
		KeyBackend: true, KeyLogLevel: true, KeyLogFormat: true,
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for _, level := range []ConfigLevel{FileLevel, UserLevel} {
		store, ok := m.stores[level]
		if !ok {
			continue
		}
		for _, key := range store.Keys() {
			if !known[key] {
				errs = append(errs, NewConfigError("validate", CodeInvalidFormatErr, key,
					store.Path().String(), level.String(), fmt.Errorf("unknown key")))
			}
		}
	}
	return errs
}

// validatePattern accepts a path.Match glob or a prefix ending in "/".
func validatePattern(p string) error {
	if p == "" {
		return fmt.Errorf("empty reference pattern")
	}
	if !strings.HasPrefix(p, "refs/") {
		return fmt.Errorf("reference pattern %q must start with refs/", p)
	}
	if _, e := path.Match(p, "refs/"); e != nil {
		return fmt.Errorf("reference pattern %q: %w", p, e)
	}
	return nil
}
