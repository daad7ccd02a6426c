package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinnison/git-sync/pkg/common/logger"
	"github.com/kinnison/git-sync/pkg/repository/scpath"
	"github.com/kinnison/git-sync/pkg/repository/sourcerepo"
)

func writeConfig(t *testing.T, name, content string) scpath.AbsolutePath {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return scpath.AbsolutePath(p)
}

func loaded(t *testing.T, opts ...ManagerOption) *Manager {
	t.Helper()
	m := NewManager(append([]ManagerOption{WithUserFile("")}, opts...)...)
	require.NoError(t, m.Load(context.Background()))
	return m
}

func TestManager_BuiltinDefaults(t *testing.T) {
	m := loaded(t)

	s, e := m.Settings()
	require.NoError(t, e)
	assert.Equal(t, 0, s.Workers)
	assert.False(t, s.FullWalk)
	assert.Empty(t, s.Refs)
	assert.Equal(t, sourcerepo.BackendAuto, s.Backend)
	assert.Equal(t, logger.LevelInfo, s.LogLevel)
	assert.Equal(t, logger.FormatText, s.LogFormat)

	entry := m.Get(KeyBackend)
	require.NotNil(t, entry)
	assert.Equal(t, BuiltinLevel, entry.Level)
	assert.Equal(t, BuiltinSource, entry.Source)
}

func TestManager_FileValues(t *testing.T) {
	file := writeConfig(t, "sync.toml", `
[transfer]
workers = 8
full_walk = true
refs = ["refs/heads/*", "refs/tags/"]
backend = "git"

[log]
level = "debug"
format = "json"
`)
	m := loaded(t, WithFile(file))

	s, e := m.Settings()
	require.NoError(t, e)
	assert.Equal(t, 8, s.Workers)
	assert.True(t, s.FullWalk)
	assert.Equal(t, []string{"refs/heads/*", "refs/tags/"}, s.Refs)
	assert.Equal(t, sourcerepo.BackendGit, s.Backend)
	assert.Equal(t, logger.LevelDebug, s.LogLevel)
	assert.Equal(t, logger.FormatJSON, s.LogFormat)
	assert.Equal(t, logger.Config{Level: logger.LevelDebug, Format: logger.FormatJSON}, s.LoggerConfig())

	entry := m.Get(KeyWorkers)
	require.NotNil(t, entry)
	assert.Equal(t, FileLevel, entry.Level)
	assert.Equal(t, NewFileSource(file), entry.Source)
	assert.True(t, entry.Source.IsFile())
}

func TestManager_Precedence(t *testing.T) {
	user := writeConfig(t, "user.toml", `
[transfer]
workers = 2
backend = "native"
refs = ["refs/heads/*"]

[log]
level = "warn"
`)
	file := writeConfig(t, "file.toml", `
[transfer]
workers = 4
`)
	m := loaded(t, WithUserFile(user), WithFile(file))
	m.SetCommandLine(KeyBackend, "git")

	s, e := m.Settings()
	require.NoError(t, e)
	assert.Equal(t, 4, s.Workers, "file beats user")
	assert.Equal(t, sourcerepo.BackendGit, s.Backend, "command line beats everything")
	assert.Equal(t, logger.LevelWarn, s.LogLevel, "user beats builtin")
	assert.Equal(t, []string{"refs/heads/*"}, s.Refs)

	m.SetCommandLine(KeyRefs, "refs/tags/*")
	assert.Equal(t, []string{"refs/tags/*"}, Values(m.GetAll(KeyRefs)), "lists are replaced, not merged")
}

func TestManager_MissingUserFileIsEmpty(t *testing.T) {
	m := loaded(t, WithUserFile(scpath.AbsolutePath(filepath.Join(t.TempDir(), "nope.toml"))))
	_, e := m.Settings()
	require.NoError(t, e)
}

func TestManager_MissingExplicitFileFails(t *testing.T) {
	m := NewManager(WithUserFile(""), WithFile(scpath.AbsolutePath(filepath.Join(t.TempDir(), "nope.toml"))))
	e := m.Load(context.Background())
	require.Error(t, e)

	var ce *ConfigError
	require.True(t, errors.As(e, &ce))
	assert.Equal(t, CodeIOErr, ce.Code())
}

func TestManager_ParseErrorNamesFile(t *testing.T) {
	file := writeConfig(t, "broken.toml", "[transfer\nworkers = ")
	m := NewManager(WithUserFile(""), WithFile(file))

	e := m.Load(context.Background())
	require.Error(t, e)
	assert.True(t, IsInvalidFormat(e))
	assert.Contains(t, e.Error(), file.String())
}

func TestManager_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{"negative workers", "[transfer]\nworkers = -1\n", KeyWorkers},
		{"workers not a number", "[transfer]\nworkers = \"many\"\n", KeyWorkers},
		{"full walk not bool", "[transfer]\nfull_walk = \"sometimes\"\n", KeyFullWalk},
		{"unknown backend", "[transfer]\nbackend = \"svn\"\n", KeyBackend},
		{"bad pattern", "[transfer]\nrefs = [\"refs/heads/[\"]\n", KeyRefs},
		{"pattern outside refs", "[transfer]\nrefs = [\"HEAD\"]\n", KeyRefs},
		{"unknown level", "[log]\nlevel = \"loud\"\n", KeyLogLevel},
		{"unknown format", "[log]\nformat = \"xml\"\n", KeyLogFormat},
		{"unknown key", "[transfer]\nworkerz = 3\n", "transfer.workerz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := writeConfig(t, "c.toml", tt.content)
			m := loaded(t, WithFile(file))

			_, e := m.Settings()
			require.Error(t, e)
			assert.True(t, IsInvalidFormat(e))
			assert.True(t, errors.Is(e, ErrInvalidFormat))

			var ce *ConfigError
			require.True(t, errors.As(e, &ce))
			assert.Equal(t, tt.key, ce.Key)
			assert.Equal(t, file.String(), ce.Path)
		})
	}
}

func TestManager_CommandLineErrorHasNoPath(t *testing.T) {
	m := loaded(t)
	m.SetCommandLine(KeyWorkers, "lots")

	_, e := m.Settings()
	require.Error(t, e)
	var ce *ConfigError
	require.True(t, errors.As(e, &ce))
	assert.Empty(t, ce.Path)
	assert.Equal(t, "command-line", ce.Level)
}

func TestManager_List(t *testing.T) {
	file := writeConfig(t, "c.toml", "[transfer]\nrefs = [\"refs/heads/a\", \"refs/heads/b\"]\n")
	m := loaded(t, WithFile(file))

	var keys []string
	for _, e := range m.List() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{
		KeyLogFormat, KeyLogLevel,
		KeyBackend, KeyFullWalk, KeyRefs, KeyRefs, KeyWorkers,
	}, keys)
}

func TestUserConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, scpath.AbsolutePath("/xdg/git-sync/config.toml"), UserConfigPath())
}

func TestConfigEntry_Conversions(t *testing.T) {
	e := NewEntry("k", " 12 ", FileLevel, "/tmp/c.toml")
	n, err := e.AsInt()
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	for _, v := range []string{"yes", "On", "1", "true"} {
		b, err := NewEntry("k", v, CommandLineLevel, CommandLineSource).AsBoolean()
		require.NoError(t, err)
		assert.True(t, b, v)
	}
	_, err = NewEntry("k", "maybe", CommandLineLevel, CommandLineSource).AsBoolean()
	assert.True(t, IsInvalidFormat(err))

	c := e.Clone()
	c.Value = "changed"
	assert.Equal(t, " 12 ", e.Value)
}

func TestConfigLevel_String(t *testing.T) {
	assert.Equal(t, "command-line", CommandLineLevel.String())
	assert.Equal(t, "file", FileLevel.String())
	assert.Equal(t, "user", UserLevel.String())
	assert.Equal(t, "builtin", BuiltinLevel.String())
	assert.Equal(t, "unknown", ConfigLevel(42).String())
	assert.True(t, UserLevel.IsFile())
	assert.False(t, BuiltinLevel.IsFile())
	assert.False(t, ConfigLevel(-1).IsValid())
}
