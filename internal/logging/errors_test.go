package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, slog.LevelInfo)

	err := oops.Code("USER_CREATE_FAILED").
		With("operation", "insert user").
		Errorf("boom")

	LogError(context.Background(), logger, "register failed", err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "register failed", entry["msg"])
	assert.Equal(t, "USER_CREATE_FAILED", entry["code"])

	ctxAttr, ok := entry["context"].(map[string]any)
	require.True(t, ok, "context attribute must be an object: %v", entry["context"])
	assert.Equal(t, "insert user", ctxAttr["operation"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, slog.LevelInfo)

	LogError(context.Background(), logger, "login failed", errors.New("plain failure"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["error"], "plain failure")
	assert.NotContains(t, entry, "code")
}
