package logging

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405")),
	)
}

// ParseLevel maps a config log level onto zerolog. Unknown values fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Options configures Setup. Nil writers are skipped.
type Options struct {
	Level   string
	Console io.Writer
	File    io.Writer
	// GraylogAddress enables the GELF sink when non-empty.
	GraylogAddress string
}

// Setup builds the root logger. Console output is colored, file output is
// plain console format and Graylog receives JSON over GELF.
func Setup(opts Options) (zerolog.Logger, error) {
	level := ParseLevel(opts.Level)
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	var writers []io.Writer
	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        opts.Console,
			TimeFormat: time.RFC3339,
		})
	}
	if opts.File != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        opts.File,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}
	if opts.GraylogAddress != "" {
		gw, err := gelf.NewWriter(opts.GraylogAddress)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to connect to graylog: %w", err)
		}
		writers = append(writers, gw)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()

	logger.Info().Str("loglevel", level.String()).Msg("Logging set up")
	return logger, nil
}
