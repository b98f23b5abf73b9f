package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		level   log.Level
		wantErr bool
	}{
		{"defaults", config.LoggingConfig{}, log.InfoLevel, false},
		{"debug text", config.LoggingConfig{Level: "debug", Format: "text"}, log.DebugLevel, false},
		{"upper case level", config.LoggingConfig{Level: "WARN"}, log.WarnLevel, false},
		{"logfmt", config.LoggingConfig{Level: "error", Format: "logfmt"}, log.ErrorLevel, false},
		{"bad level", config.LoggingConfig{Level: "loud"}, 0, true},
		{"bad format", config.LoggingConfig{Format: "xml"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, &bytes.Buffer{})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.level, logger.GetLevel())
		})
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("query", "op", "descendants", "results", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "query", entry["msg"])
	assert.Equal(t, "descendants", entry["op"])
	assert.Equal(t, float64(3), entry["results"])
	assert.NotContains(t, buf.String(), "hidden")
}
