package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  = logrus.New()
	ErrorLogger = logrus.New()
)

func InitLogger() {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()

	// Info ke stdout, error ke stderr
	InfoLogger.SetOutput(os.Stdout)
	InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	ErrorLogger.SetOutput(os.Stderr)
	ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	InfoLogger.SetLevel(logrus.InfoLevel)
}

// SetLevel adjusts the info logger, e.g. "debug" while developing.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		ErrorLogger.Printf("Unknown log level %q, keeping %s", level, InfoLogger.GetLevel())
		return
	}
	InfoLogger.SetLevel(lvl)
}
