package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	prev := Log
	Log = zap.New(core, zap.AddCaller(), callerSkip)
	t.Cleanup(func() { Log = prev })
	return logs
}

func TestCallerFrame(t *testing.T) {
	logs := observe(t)

	Info("info")
	Warn("warn")
	Error("error")
	Named("vault").Info("named")

	entries := logs.All()
	require.Len(t, entries, 4)
	for _, e := range entries {
		require.True(t, e.Caller.Defined, e.Message)
		require.Equal(t, "logger_test.go", filepath.Base(e.Caller.File), e.Message)
	}
	require.Equal(t, "vault", entries[3].LoggerName)
}
