// Package logging configures structured logging for hookd. All output goes
// to stderr: stdout is reserved for the hook protocol and must stay clean.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	initOnce sync.Once
	base     *logrus.Logger
)

func logger() *logrus.Logger {
	initOnce.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stderr)
		base.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: false,
			FullTimestamp:    true,
		})
		base.SetLevel(levelFromEnv())
	})
	return base
}

// levelFromEnv reads HOOKD_LOG_LEVEL. The default is warn so event commands
// stay quiet unless something actually went wrong.
func levelFromEnv() logrus.Level {
	switch strings.ToLower(os.Getenv("HOOKD_LOG_LEVEL")) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning", "":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

// NewLogger returns a component-scoped logger.
func NewLogger(component string) *logrus.Entry {
	return logger().WithField("component", component)
}

// SetLevel overrides the log level, used by the --verbose flag.
func SetLevel(level logrus.Level) {
	logger().SetLevel(level)
}
