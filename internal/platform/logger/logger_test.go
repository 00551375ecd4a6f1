package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/keepsake-app/keepsake-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	testCases := []struct {
		name     string
		level    string
		expected slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"info level", "info", slog.LevelInfo},
		{"warn level", "warn", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"mixed case", "DeBuG", slog.LevelDebug},
		{"invalid falls back to info", "verbose", slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{LogLevel: tc.level})
			require.NoError(t, err)
			require.NotNil(t, logger)

			assert.True(t, logger.Enabled(context.Background(), tc.expected))
			if tc.expected > slog.LevelDebug {
				assert.False(t, logger.Enabled(context.Background(), tc.expected-4))
			}
		})
	}
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	base := slog.Default().With("component", "test")
	ctx := WithLogger(context.Background(), base)

	assert.Same(t, base, FromContext(ctx))
	assert.Same(t, base, FromContextOrDefault(ctx, nil))

	// Without a stored logger, FromContext falls back to the default.
	empty := context.Background()
	assert.NotNil(t, FromContext(empty))

	fallback := slog.Default().With("component", "fallback")
	assert.Same(t, fallback, FromContextOrDefault(empty, fallback))
}
