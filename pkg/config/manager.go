package config

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kinnison/git-sync/pkg/repository/scpath"
)

// ConfigFileName is the name of the user configuration file
const ConfigFileName = "config.toml"

// AppDirName is the directory under the XDG config home
const AppDirName = "git-sync"

// Manager resolves configuration keys across the levels, command-line
// first, then the --config file, the user file and builtin defaults.
// It is safe for concurrent use.
type Manager struct {
	mu              sync.RWMutex
	stores          map[ConfigLevel]*Store
	commandLine     map[string][]string
	builtinDefaults map[string][]string
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithFile adds an explicitly named configuration file. It must exist.
func WithFile(path scpath.AbsolutePath) ManagerOption {
	return func(m *Manager) {
		if path != "" {
			m.stores[FileLevel] = NewStore(path, FileLevel, true)
		}
	}
}

// WithUserFile replaces the user configuration path. Empty disables the
// user level.
func WithUserFile(path scpath.AbsolutePath) ManagerOption {
	return func(m *Manager) {
		if path == "" {
			delete(m.stores, UserLevel)
			return
		}
		m.stores[UserLevel] = NewStore(path, UserLevel, false)
	}
}

// NewManager creates a manager with the user file at its default location.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		stores:          make(map[ConfigLevel]*Store),
		commandLine:     make(map[string][]string),
		builtinDefaults: make(map[string][]string),
	}
	if p := UserConfigPath(); p != "" {
		m.stores[UserLevel] = NewStore(p, UserLevel, false)
	}
	for _, opt := range opts {
		opt(m)
	}
	m.loadBuiltinDefaults()
	return m
}

// Load reads every configuration file concurrently.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, store := range m.stores {
		g.Go(store.Load)
	}
	return g.Wait()
}

// Get retrieves the highest precedence value for key, or nil.
func (m *Manager) Get(key string) *ConfigEntry {
	entries := m.GetAll(key)
	if len(entries) == 0 {
		return nil
	}
	return entries[len(entries)-1]
}

// GetAll returns every value of key from the highest level that sets it.
// Lists are not merged across levels.
func (m *Manager) GetAll(key string) []*ConfigEntry {
	key = strings.ToLower(key)
	m.mu.RLock()
	defer m.mu.RUnlock()

	if values, ok := m.commandLine[key]; ok {
		return newEntries(key, values, CommandLineLevel, CommandLineSource)
	}
	for _, level := range []ConfigLevel{FileLevel, UserLevel} {
		store, ok := m.stores[level]
		if !ok {
			continue
		}
		if entries := store.GetEntries(key); len(entries) > 0 {
			return entries
		}
	}
	if values, ok := m.builtinDefaults[key]; ok {
		return newEntries(key, values, BuiltinLevel, BuiltinSource)
	}
	return nil
}

// SetCommandLine sets a command-line value. Several values make a list.
func (m *Manager) SetCommandLine(key string, values ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandLine[strings.ToLower(key)] = values
}

// List returns the effective entry of every known key, sorted by key.
func (m *Manager) List() []*ConfigEntry {
	m.mu.RLock()
	keys := make(map[string]bool)
	for k := range m.commandLine {
		keys[k] = true
	}
	for _, store := range m.stores {
		for _, k := range store.Keys() {
			keys[k] = true
		}
	}
	for k := range m.builtinDefaults {
		keys[k] = true
	}
	m.mu.RUnlock()

	var entries []*ConfigEntry
	for k := range keys {
		entries = append(entries, m.GetAll(k)...)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// UserConfigPath returns $XDG_CONFIG_HOME/git-sync/config.toml, falling
// back to ~/.config. Empty when neither can be determined.
func UserConfigPath() scpath.AbsolutePath {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return scpath.AbsolutePath(filepath.Join(base, AppDirName, ConfigFileName))
}

func (m *Manager) loadBuiltinDefaults() {
	m.builtinDefaults[KeyWorkers] = []string{"0"}
	m.builtinDefaults[KeyFullWalk] = []string{"false"}
	m.builtinDefaults[KeyBackend] = []string{"auto"}
	m.builtinDefaults[KeyLogLevel] = []string{"info"}
	m.builtinDefaults[KeyLogFormat] = []string{"text"}
}

func newEntries(key string, values []string, level ConfigLevel, source ConfigSource) []*ConfigEntry {
	out := make([]*ConfigEntry, 0, len(values))
	for _, v := range values {
		out = append(out, NewEntry(key, v, level, source))
	}
	return out
}
