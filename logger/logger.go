package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide structured logger.
var Log = logrus.New()

// Init configures Log. An unknown level falls back to info; format is "json" or "text".
func Init(opts ...string) {
	level, format := "info", "text"
	if len(opts) > 0 && opts[0] != "" {
		level = opts[0]
	}
	if len(opts) > 1 && opts[1] != "" {
		format = opts[1]
	}

	Log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
