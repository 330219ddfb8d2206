package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/roverlabs/tubmerge/pkg/logging"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf)
	logger.Info().Str("segment", "catalog_0.catalog").Msg("test message")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "catalog_0.catalog")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("level "+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, logging.ParseLevel(tt.input))
		})
	}
}

func TestContext(t *testing.T) {
	t.Run("FromContext returns default without logger", func(t *testing.T) {
		assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
		assert.Equal(t, logging.Default(), logging.FromContext(nil)) //nolint:staticcheck // nil context on purpose
	})

	t.Run("WithLogger round-trips", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(&buf)
		ctx := logging.WithLogger(context.Background(), &logger)
		logging.Ctx(ctx).Info().Msg("from context")
		assert.Contains(t, buf.String(), "from context")
	})

	t.Run("WithDataset tags entries", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(&buf)
		ctx := logging.WithLogger(context.Background(), &logger)
		ctx = logging.WithDataset(ctx, "/data/tub_a")
		logging.Ctx(ctx).Info().Msg("tagged")
		assert.Contains(t, buf.String(), "/data/tub_a")
	})
}
