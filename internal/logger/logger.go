package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var Log zerolog.Logger

// Init sets up the global logger to write to both stdout and a file.
func Init(logDir string) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	logFile, err := os.OpenFile(filepath.Join(logDir, "spellaudit.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout}
	Log = zerolog.New(io.MultiWriter(console, logFile)).With().Timestamp().Logger()

	return nil
}

func init() {
	// Usable before Init for tests and CLI subcommands
	Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
}
