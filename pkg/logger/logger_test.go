package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, getLogLevel(in), "level %q", in)
	}
}

func TestLogParticipantSignedUp(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	l.LogParticipantSignedUp(context.Background(), "Chess Club", "new@mergington.edu")

	out := buf.String()
	assert.Contains(t, out, "Participant Signed Up")
	assert.Contains(t, out, "Chess Club")
	assert.Contains(t, out, "new@mergington.edu")
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "error")

	l.LogParticipantUnregistered(context.Background(), "Chess Club", "gone@mergington.edu")
	assert.Empty(t, buf.String())

	l.ErrorWithContext(context.Background(), "publish failed", errors.New("broker down"), map[string]interface{}{"topic": "t"})
	assert.Contains(t, buf.String(), "broker down")
}
