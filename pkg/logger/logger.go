package logger

import (
	"github.com/sirupsen/logrus"
)

// Log is the shared application logger
var Log = logrus.New()

func init() {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	Log.SetLevel(logrus.InfoLevel)
}

// SetLevel sets the log level from a string (debug, info, warn, error)
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		Log.Warnf("Unknown log level %q, keeping %s", level, Log.GetLevel())
		return
	}
	Log.SetLevel(parsed)
}
