package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type Options struct {
	Level  string
	Format string
	App    string
}

// New construye el logger del servicio sobre zerolog.
// FormatText usa ConsoleWriter (dev); FormatJSON escribe líneas JSON (prod).
func New(opts Options) zerolog.Logger {
	var l zerolog.Logger
	switch ParseFormat(opts.Format) {
	case FormatJSON:
		l = zerolog.New(os.Stdout)
	default:
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	l = l.Level(ParseLevel(opts.Level)).With().Timestamp().Logger()

	if app := strings.TrimSpace(opts.App); app != "" {
		l = l.With().Str("app", app).Logger()
	}
	return l
}
