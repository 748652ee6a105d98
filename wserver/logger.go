package wserver

import (
	"github.com/annchain/bondledger/mylog"
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

// InitLoggers redirects this package to its own rotated file when logdir
// is set.
func InitLoggers(logger *logrus.Logger, logdir string) {
	log = mylog.InitLogger(logger, logdir, "wserver.log")
	logrus.Debug("wserver logger initialized.")
}
