package logging

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), logger)
	l := FromContext(ctx)
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")

	// Missing logger falls back to a no-op logger.
	nop := FromContext(context.Background())
	nop.Info().Msg("dropped")
	assert.NotContains(t, buf.String(), "dropped")
}

func TestFieldHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := WithUpload(zerolog.New(&buf).Level(zerolog.DebugLevel), "u-1", "p.csv")

	LogTransition(logger, "Idle", "FileSelected")
	LogFailure(logger, "submission.timeout", errors.New("deadline"))
	LogAPICall(logger, "POST", "/analyze-portfolio", 502, 20*time.Millisecond, errors.New("bad gateway"))

	out := buf.String()
	assert.Contains(t, out, `"upload_id":"u-1"`)
	assert.Contains(t, out, `"to":"FileSelected"`)
	assert.Contains(t, out, `"category":"submission.timeout"`)
	assert.Contains(t, out, `"status":502`)
}

func TestNewLoggerWithConfig_FileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	logger := NewLoggerWithConfig(LogConfig{
		Level:    "debug",
		File:     true,
		FilePath: path,
		MaxSize:  1,
	})
	logger.Debug().Msg("written")
	require.FileExists(t, path)
}
