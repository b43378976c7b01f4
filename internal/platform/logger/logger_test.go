package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Info, ParseLevel(""))
	assert.Equal(t, Warn, ParseLevel("warning"))
	assert.Equal(t, Error, ParseLevel(" error "))
	assert.Equal(t, Info, ParseLevel("nope"))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatText, ParseFormat("console"))
	assert.Equal(t, FormatText, ParseFormat(""))
}

func TestZapLogger_WithMergesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &ZapLogger{z: zap.New(core)}

	child := l.With(map[string]any{"component": "simulator"})
	child.Info("tick done", map[string]any{"animals": 3, "": "ignored"})
	child.Error("tick failed", map[string]any{"err": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "simulator", first["component"])
	assert.EqualValues(t, 3, first["animals"])
	_, hasEmpty := first[""]
	assert.False(t, hasEmpty)

	second := entries[1].ContextMap()
	assert.Equal(t, "boom", second["err"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestNewNop_DoesNotPanic(t *testing.T) {
	l := NewNop()
	l.With(nil).Debug("ignored", nil)
}
