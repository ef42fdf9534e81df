package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/revenue-guard/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	previous := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(previous) })

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.InfoLevel))

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")
	logging.Error().Msg("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "warning message")
	assert.Contains(t, output, "error message")
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithRepairOrder(ctx, "RO-500")

	logging.FromContext(ctx).Info().Msg("reconciled")

	testLogger.AssertContains(t, `"ro_id":"RO-500"`)
	testLogger.AssertContains(t, "reconciled")
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is part of the contract
	assert.Same(t, logging.Default(), logging.FromContext(nil))
}

func TestNewLoggerFromConfig(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	tests := []struct {
		name     string
		level    string
		wantInfo bool
		wantWarn bool
	}{
		{name: "info", level: "info", wantInfo: true, wantWarn: true},
		{name: "warning alias", level: "warning", wantInfo: false, wantWarn: true},
		{name: "error", level: "error", wantInfo: false, wantWarn: false},
		{name: "unknown falls back to info", level: "loud", wantInfo: true, wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "revguard.log")
			logger := logging.NewLoggerFromConfig(&logging.Config{
				Level:  tt.level,
				Format: "json",
				Output: path,
			})

			logger.Info().Msg("info line")
			logger.Warn().Msg("warn line")

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			output := string(raw)

			assert.Equal(t, tt.wantInfo, strings.Contains(output, "info line"))
			assert.Equal(t, tt.wantWarn, strings.Contains(output, "warn line"))
		})
	}
}
