package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is usable before Init so packages can log from tests.
var Log = logrus.New()

func Init() {
	Log = logrus.New()
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	Log.SetLevel(logLevel)
}

// InitCLI configures a human readable logger writing to w.
func InitCLI(w io.Writer, debug bool) {
	Log = logrus.New()
	Log.SetOutput(w)
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
	Log.SetLevel(logrus.InfoLevel)
	if debug {
		Log.SetLevel(logrus.DebugLevel)
	}
}

func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}
