package httpclient

import (
	"fmt"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// LeveledLogger adapts logrus to retryablehttp.LeveledLogger.
// Request traces are demoted to debug so they only show with --verbose.
type LeveledLogger struct {
	logger logrus.FieldLogger
}

var _ retryablehttp.LeveledLogger = (*LeveledLogger)(nil)

// NewLeveledLogger wraps logger.
func NewLeveledLogger(logger logrus.FieldLogger) *LeveledLogger {
	return &LeveledLogger{logger: logger}
}

// Error logs at error level.
func (l *LeveledLogger) Error(msg string, keysAndValues ...any) {
	l.logger.WithFields(fields(keysAndValues)).Error(msg)
}

// Warn logs at warning level.
func (l *LeveledLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.WithFields(fields(keysAndValues)).Warn(msg)
}

// Info logs at debug level.
func (l *LeveledLogger) Info(msg string, keysAndValues ...any) {
	l.logger.WithFields(fields(keysAndValues)).Debug(msg)
}

// Debug logs at debug level.
func (l *LeveledLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func fields(keysAndValues []any) logrus.Fields {
	out := make(logrus.Fields, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	if len(keysAndValues)%2 == 1 {
		out["extra"] = keysAndValues[len(keysAndValues)-1]
	}

	return out
}
