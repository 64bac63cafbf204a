package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestMinimalEncoderRendersKnownFields(t *testing.T) {
	enc := newMinimalEncoder()

	entry := zapcore.Entry{
		Level:   zapcore.InfoLevel,
		Time:    time.Date(2026, 3, 15, 13, 4, 35, 0, time.UTC),
		Message: "Run OK [job:backup]",
	}
	fields := []zapcore.Field{
		zap.String(FieldRunID, "run-1"),
		zap.Int(FieldDurationMS, 412),
		zap.String(FieldStatus, "success"),
	}

	buf, err := enc.EncodeEntry(entry, fields)
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "13:04:35")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "412")
	assert.Contains(t, out, "ms")
	assert.Contains(t, out, "success")
	assert.NotContains(t, out, "INFO", "info level stays implicit")
}

func TestMinimalEncoderShowsWarnLevel(t *testing.T) {
	enc := newMinimalEncoder()

	entry := zapcore.Entry{
		Level:   zapcore.WarnLevel,
		Time:    time.Now(),
		Message: "Tick error",
	}

	buf, err := enc.EncodeEntry(entry, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "WARN")
}

func TestExtractFieldValues(t *testing.T) {
	out := extractFieldValues([]zapcore.Field{
		zap.String(FieldJobName, "backup"),
		zap.Int(FieldRetentionDays, 7),
		zap.String("unlisted_key", "hidden"),
	})

	assert.Contains(t, out, "backup")
	assert.Contains(t, out, "7")
	assert.Contains(t, out, "d")
	assert.NotContains(t, out, "hidden", "only the standard field names render")
}
