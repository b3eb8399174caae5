// Package logrusconfig builds the prefixed text loggers used by the console tools
package logrusconfig

import (
	"flag"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
)

var (
	loglevel   *int
	timestamps *bool
)

// InitParam registers the logging flags. Call it before flag.Parse.
func InitParam() {
	loglevel = flag.Int("loglevel", int(logrus.InfoLevel), "The loglevel to use. Valid values are from 0 to 6. Higher values output more information")
	timestamps = flag.Bool("logtime", true, "Prefix log lines with the full timestamp")
}

// Level returns the level selected on the command line, or fallback when the flags were not registered
func Level(fallback logrus.Level) logrus.Level {
	if loglevel == nil {
		return fallback
	}

	level := logrus.Level(*loglevel)
	if level > logrus.TraceLevel {
		return logrus.TraceLevel
	}
	return level
}

// GetLogger returns an entry that prints prefix in front of every message
func GetLogger(prefix string, level logrus.Level) *logrus.Entry {
	logrus.ErrorKey = "$error"

	logger := logrus.New()
	logger.SetLevel(Level(level))

	customFormatter := new(prefixed.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05.000"
	customFormatter.FullTimestamp = timestamps == nil || *timestamps
	customFormatter.PrefixPadding = 12
	customFormatter.SpacePadding = 40
	logger.SetFormatter(customFormatter)

	return logger.WithField("prefix", prefix)
}
