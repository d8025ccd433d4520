package xlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalHandlerFormatsLevelAndMessage(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(NewTerminalHandler(&buf, LevelInfo))
	log.Info("hello", "key", "value")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "INFO "))
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "key=value")
}

func TestTerminalHandlerRespectsMinLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(NewTerminalHandler(&buf, LevelWarn))
	log.Info("should be filtered")
	log.Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be filtered")
	assert.Contains(t, out, "should appear")
}

func TestLoggerNewAttachesContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(NewTerminalHandler(&buf, LevelInfo))
	child := log.New("component", "test")
	child.Info("msg")

	assert.Contains(t, buf.String(), "component=test")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, LevelInfo, ParseLevel("unknown"))
}
