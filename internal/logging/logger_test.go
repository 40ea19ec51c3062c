package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskmanager-core/internal/errors"
)

func TestStructuredLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(INFO, true, &buf)

	logger.Info("list saved", "name", "Work", "count", 2)

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "list saved", entry.Message)
	assert.Equal(t, "Work", entry.Fields["name"])
	assert.EqualValues(t, 2, entry.Fields["count"])
	assert.NotEmpty(t, entry.Timestamp)
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(WARN, true, &buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestStructuredLogger_ComponentAndTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(INFO, true, &buf).
		WithComponent("storage").
		WithTraceID("trace-123")

	logger.Info("ready")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "storage", entry.Component)
	assert.Equal(t, "trace-123", entry.TraceID)
}

func TestStructuredLogger_ContextTraceWins(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(INFO, true, &buf).WithTraceID("own-trace")

	ctx := WithTraceID(context.Background(), "ctx-trace")
	logger.InfoContext(ctx, "ready")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ctx-trace", entry.TraceID)
}

func TestStructuredLogger_TextOutputSortsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(INFO, false, &buf)

	logger.Info("ready", "zeta", 1, "alpha", 2)

	line := buf.String()
	assert.Contains(t, line, "[INFO]")
	assert.Less(t, strings.Index(line, "alpha=2"), strings.Index(line, "zeta=1"))
}

func TestGenerateTraceID_Unique(t *testing.T) {
	assert.NotEqual(t, GenerateTraceID(), GenerateTraceID())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLogLevel("debug"))
	assert.Equal(t, WARN, ParseLogLevel("WARNING"))
	assert.Equal(t, INFO, ParseLogLevel("bogus"))
}

func TestErrorFields(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ErrorFields(nil))
	})

	t.Run("taxonomy error", func(t *testing.T) {
		err := apperrors.NewFieldValidation("email", "bad address", nil).WithCode("EMAIL_INVALID_FORMAT")
		fields := ErrorFields(err)
		assert.Contains(t, fields, "error_code")
		assert.Contains(t, fields, "EMAIL_INVALID_FORMAT")
		assert.Contains(t, fields, "field_name")
		assert.Contains(t, fields, "email")
	})

	t.Run("collection", func(t *testing.T) {
		coll := apperrors.NewCollection([]*apperrors.Error{apperrors.NewValidation("a")})
		fields := ErrorFields(coll)
		assert.Contains(t, fields, apperrors.CodeMultipleValidation)
		assert.Contains(t, fields, "error_count")
	})

	t.Run("plain error", func(t *testing.T) {
		fields := ErrorFields(assert.AnError)
		assert.Equal(t, []interface{}{"error", assert.AnError.Error()}, fields)
	})
}
