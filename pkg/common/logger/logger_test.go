package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinnison/git-sync/pkg/common/logger"
)

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     logger.Level
		wantDebug bool
		wantWarn  bool
	}{
		{name: "debug", level: logger.LevelDebug, wantDebug: true, wantWarn: true},
		{name: "info", level: logger.LevelInfo, wantDebug: false, wantWarn: true},
		{name: "error", level: logger.LevelError, wantDebug: false, wantWarn: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.New(logger.Config{Level: tt.level, Format: logger.FormatText, Output: &buf})

			log.Debug("debug-line")
			log.Warn("warn-line")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug-line"))
			assert.Equal(t, tt.wantWarn, strings.Contains(out, "warn-line"))
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.LevelInfo, Format: logger.FormatJSON, Output: &buf})

	log.Info("copied", "objects", 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "copied", record["msg"])
	assert.Equal(t, float64(3), record["objects"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logger.Level
		wantErr bool
	}{
		{in: "debug", want: logger.LevelDebug},
		{in: "INFO", want: logger.LevelInfo},
		{in: "", want: logger.LevelInfo},
		{in: "warning", want: logger.LevelWarn},
		{in: "error", want: logger.LevelError},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logger.ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := logger.ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, logger.FormatJSON, f)

	_, err = logger.ParseFormat("xml")
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	log := logger.Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
