package logging

import (
	"flag"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
)

var loglevel *int

// InitParam registers the -loglevel flag, call it before flag.Parse
func InitParam() {
	loglevel = flag.Int("loglevel", -1, "The loglevel to use. Valid values are from 0 to 6. Higher values output more information")
}

// GetLogger returns a logger at level, unless -loglevel was given on the command line
func GetLogger(level logrus.Level) *logrus.Entry {
	logrus.ErrorKey = "$error"
	logger := logrus.New()
	if loglevel == nil || *loglevel < 0 {
		logger.SetLevel(level)
	} else {
		logger.SetLevel(logrus.Level(*loglevel))
	}
	customFormatter := new(prefixed.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	customFormatter.PrefixPadding = 20
	customFormatter.SpacePadding = 50
	logger.SetFormatter(customFormatter)
	return logrus.NewEntry(logger)
}

// WithPrefix tags the entries of a component, the formatter prints the prefix in front of the message
func WithPrefix(log *logrus.Entry, prefix string) *logrus.Entry {
	return log.WithField("prefix", prefix)
}
