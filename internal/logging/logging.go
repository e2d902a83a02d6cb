// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"os"

	"github.com/phuslu/log"
)

// Setup installs a console logger at the given level ("debug", "info",
// "warn", "error"). Unknown levels fall back to info.
func Setup(level string) {
	SetupWriter(level, os.Stderr)
}

// SetupWriter is Setup writing to w instead of stderr.
func SetupWriter(level string, w io.Writer) {
	log.DefaultLogger = log.Logger{
		Level:      parseLevel(level),
		Caller:     1,
		TimeFormat: "2006-01-02 15:04:05",
		Writer: &log.ConsoleWriter{
			Writer:         w,
			ColorOutput:    w == os.Stderr,
			EndWithMessage: true,
		},
	}
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug", "info", "warn", "error":
		return log.ParseLevel(level)
	}
	return log.InfoLevel
}
