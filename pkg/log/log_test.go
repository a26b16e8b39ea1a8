package log_test

import (
	"testing"

	"github.com/agrisense/biocat/pkg/log"
)

func TestSetupLogger_AcceptsKnownLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "disabled", "bogus"} {
		log.SetupLogger(level)
		logger := log.GetLogger()
		if logger == nil {
			t.Fatalf("GetLogger returned nil after level %q", level)
		}
	}
	log.SetupLogger("disabled")
}

func TestGetLoggerWithName_LogsWithoutPanic(t *testing.T) {
	log.SetupLogger("disabled")
	logger := log.GetLoggerWithName("test")

	// Exercise every level including odd key-value arity.
	logger.Debug("debug message", "k", 1)
	logger.Info("info message", "k", 1, "dangling")
	logger.Warn("warn message")
	logger.Error("error message", "err", "boom")
}

func TestLogError_NilIsNoOp(t *testing.T) {
	log.SetupLogger("disabled")
	log.LogError(nil, "should not log")
}
