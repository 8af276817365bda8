package logger

import (
	"github.com/sirupsen/logrus"
)

// Log is the shared application logger. Persistence and rendering failures go
// through here so the wizard contract ("logged, never propagated") has one
// place to point at.
var Log = newLogger(false)

// Init reconfigures the shared logger. Called once from CLI setup.
func Init(verbose bool) {
	Log = newLogger(verbose)
}

func newLogger(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}
