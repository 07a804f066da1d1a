package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"orgchart/internal/platform/config"
)

// Init configures the global zerolog logger. Every event carries a service
// field so pipeline output stays attributable when logs from the server and
// the one-shot refresh binary land in the same place.
func Init(cfg config.LoggingConfig) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	switch {
	case cfg.Output == "file" && cfg.FilePath != "":
		if file, ok := openLogFile(cfg.FilePath); ok {
			out = file
		}
	case cfg.Format == "text":
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "orgchart").Logger()
}

// openLogFile falls back to stdout when the path cannot be used.
func openLogFile(path string) (*os.File, bool) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Error().Err(err).Msg("failed to create log directory")
		return nil, false
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
	if err != nil {
		log.Error().Err(err).Msg("failed to open log file")
		return nil, false
	}
	return file, true
}
