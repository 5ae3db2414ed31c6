package keyer

import (
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Nothing here is ever called from inside the sample loops.

var logger atomic.Pointer[log.Logger]

func init() {
	logger.Store(log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "cwkeyer",
	}))
}

func Logger() *log.Logger {
	return logger.Load()
}

func SetLogger(l *log.Logger) {
	if l != nil {
		logger.Store(l)
	}
}

// SetLogLevel takes "debug", "info", "warn", "error".
func SetLogLevel(level string) error {
	var lvl, err = log.ParseLevel(level)
	if err != nil {
		return err
	}

	Logger().SetLevel(lvl)

	return nil
}
