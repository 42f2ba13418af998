package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPrintfHelpersReachCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))

	Info("loaded %d items", 3)
	Warn("slow call %s", "getByTags")
	Debug("cache hit %s", "item-1")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "loaded 3 items", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "cache hit item-1", entries[2].Message)
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init("production", "loud"))
	assert.NoError(t, Init("development", "debug"))
}
