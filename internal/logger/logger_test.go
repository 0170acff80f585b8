package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		level     Level
		wantDebug bool
		wantInfo  bool
	}{
		{LevelOff, false, false},
		{LevelNormal, false, true},
		{LevelVerbose, true, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		l := New(tt.level, &buf)
		l.Debug("d %d", 1)
		l.Info("i %d", 2)

		out := buf.String()
		assert.Equal(t, tt.wantDebug, strings.Contains(out, "[DBG] "), "level %d debug", tt.level)
		assert.Equal(t, tt.wantInfo, strings.Contains(out, "[INF] "), "level %d info", tt.level)
	}
}

func TestWarnAndError(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelNormal, &buf)
	l.Warn("cache unavailable: %s", "locked")
	l.Error("boom")

	out := buf.String()
	assert.Contains(t, out, "[WRN] ")
	assert.Contains(t, out, "cache unavailable: locked")
	assert.Contains(t, out, "[ERR] ")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelOff, &buf)
	l.Info("hidden")
	l.SetLevel(LevelNormal)
	l.Info("shown")

	assert.Equal(t, LevelNormal, l.GetLevel())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelOff, ParseLevel("off"))
	assert.Equal(t, LevelVerbose, ParseLevel(" Verbose "))
	assert.Equal(t, LevelNormal, ParseLevel("normal"))
	assert.Equal(t, LevelNormal, ParseLevel("whatever"))
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Debug("no panic")
		l.Info("no panic")
		l.Warn("no panic")
		l.Error("no panic")
	})
}
