package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitAndLevels(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, &buf)

	Debug("store", "should be suppressed")
	Info("store", "loaded %d contracts", 7)
	Warn("runner", "pool empty")

	out := buf.String()
	assert.NotContains(t, out, "should be suppressed")
	assert.Contains(t, out, "loaded 7 contracts")
	assert.Contains(t, out, "subsystem=store")
	assert.Contains(t, out, "subsystem=runner")
}

func TestErrorIncludesErrAttr(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelError, &buf)

	Error("engine", assert.AnError, "scenario aborted")

	out := buf.String()
	assert.Contains(t, out, "scenario aborted")
	assert.Contains(t, out, "error=")
}

func TestLevelString(t *testing.T) {
	cases := map[LogLevel]string{
		LevelDebug:   "DEBUG",
		LevelInfo:    "INFO",
		LevelWarn:    "WARN",
		LevelError:   "ERROR",
		LogLevel(42): "UNKNOWN",
	}
	for level, want := range cases {
		assert.Equal(t, want, level.String())
	}
}

func TestInfoSuppressedBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelError, &buf)

	Info("store", "quiet")
	assert.False(t, strings.Contains(buf.String(), "quiet"))
}
