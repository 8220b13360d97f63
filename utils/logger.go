package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. Production logs are JSON; development logs are text.
func NewLogger(level string, production bool) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stdout

	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.Level = parsed

	if production {
		log.Formatter = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "severity",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	} else {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}
	return log
}

// DiscardLogger returns a logger that writes nowhere, for tests
func DiscardLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}
