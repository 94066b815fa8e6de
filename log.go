package xwire

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// logger is the package logger. The library logs sparingly: connection
// lifecycle and fatal stream errors, at debug and error levels.
var logger logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the package logger, for callers that carry their own
// configured instance.
func SetLogger(l logrus.FieldLogger) {
	if l != nil {
		logger = l
	}
}

// SetLogLevel configures the standard logger's level from its string
// name. Unknown names fall back to the error level.
func SetLogLevel(level string) {
	switch strings.ToLower(level) {
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	default:
		logrus.SetLevel(logrus.ErrorLevel)
	}
}
