// Package log provides structured logging for biocat built on rs/zerolog.
//
// The experiment pipeline logs through the Logger interface so estimators and
// the robustness simulator stay decoupled from the backend. Key-value pairs
// follow the variadic convention:
//
//	logger := log.GetLoggerWithName("experiment.harness")
//	logger.Info("fitting weighted booster", "strategy", label, "samples", n)
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is the minimal leveled, key-value logging interface used throughout
// the module.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

var (
	mu   sync.RWMutex
	root zerolog.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
)

// SetupLogger configures the global log level. Accepted levels are "debug",
// "info", "warn", "error" and "disabled"; anything else falls back to "info".
func SetupLogger(level string) {
	mu.Lock()
	defer mu.Unlock()

	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn", "warning":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	case "disabled", "off":
		lvl = zerolog.Disabled
	}
	root = root.Level(lvl)
}

// GetLogger returns the root logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zerologAdapter{l: root}
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zerologAdapter{l: root.With().Str("component", name).Logger()}
}

// LogError logs err with a message through the root logger. A nil err is a
// no-op.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	mu.RLock()
	l := root
	mu.RUnlock()
	l.Error().Err(err).Msg(msg)
}

type zerologAdapter struct {
	l zerolog.Logger
}

func (a *zerologAdapter) Debug(msg string, keysAndValues ...interface{}) {
	a.l.Debug().Fields(toFields(keysAndValues)).Msg(msg)
}

func (a *zerologAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.l.Info().Fields(toFields(keysAndValues)).Msg(msg)
}

func (a *zerologAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.l.Warn().Fields(toFields(keysAndValues)).Msg(msg)
}

func (a *zerologAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.l.Error().Fields(toFields(keysAndValues)).Msg(msg)
}

func toFields(kv []interface{}) map[string]interface{} {
	if len(kv) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kv[i])
		}
		fields[key] = kv[i+1]
	}
	if len(kv)%2 == 1 {
		fields["extra"] = kv[len(kv)-1]
	}
	return fields
}
