package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newPretty(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	return New(Config{Writer: buf, Format: FormatPretty, Level: level, NoColor: true}).Logger
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Writer: &buf, Environment: tt.environment}).Info("hello")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
			}
		})
	}
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Writer: &buf, Format: FormatJSON, Environment: "development"}).Info("hello")
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	newPretty(&buf, slog.LevelInfo).Info("reminder fired", "interruption_id", "abc", "count", 2, "note", "two words")

	out := buf.String()
	assert.Contains(t, out, "INF reminder fired")
	assert.Contains(t, out, "interruption_id=abc")
	assert.Contains(t, out, "count=2")
	assert.Contains(t, out, `note="two words"`)
	assert.NotContains(t, out, "\033[", "no escape codes without color")
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newPretty(&buf, slog.LevelWarn)

	log.Info("dropped")
	log.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "WRN kept")
}

func TestPrettyHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	log := newPretty(&buf, slog.LevelInfo)

	log.With("component", "api").WithGroup("request").Info("done",
		"status", 200,
		slog.Group("client", slog.String("ip", "127.0.0.1")),
	)

	out := buf.String()
	assert.Contains(t, out, "component=api")
	assert.Contains(t, out, "request.status=200")
	assert.Contains(t, out, "request.client.ip=127.0.0.1")
}

func TestPrettyHandler_EmptyGroupIsNoop(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	assert.Same(t, h, h.WithGroup(""))
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Writer: &buf, Format: FormatPretty, AddSource: true, NoColor: true}).Info("here")
	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatLevel(t *testing.T) {
	tests := []struct {
		level     slog.Level
		wantStr   string
		wantColor string
	}{
		{slog.LevelDebug, "DBG", colorMagenta},
		{slog.LevelInfo, "INF", colorGreen},
		{slog.LevelWarn, "WRN", colorYellow},
		{slog.LevelError, "ERR", colorRed},
	}

	for _, tt := range tests {
		t.Run(tt.wantStr, func(t *testing.T) {
			str, color := formatLevel(tt.level)
			assert.Equal(t, tt.wantStr, str)
			assert.Equal(t, tt.wantColor, color)
		})
	}
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatJSON})

	log.Component("scheduler").Info("tick")
	log.WithError(errors.New("boom")).Error("failed")

	assert.Contains(t, buf.String(), `"component":"scheduler"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
