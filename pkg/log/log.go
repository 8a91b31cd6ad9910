// Package log configures tagrss's [slog] output.
//
// A [Logger] pairs a console handler on standard error with an optional
// JSON log file, each with its own level. A [Recorder] can be teed in to
// keep recent records in memory.
package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/muesli/termenv"

	charmlog "github.com/charmbracelet/log"
)

type (
	Format string
	Level  string
)

const (
	FormatText   Format = "text"
	FormatLogfmt Format = "logfmt"
	FormatJSON   Format = "json"

	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnknownLogLevel  = errors.New("unknown log level")
	ErrUnknownLogFormat = errors.New("unknown log format")

	AllFormats = []string{string(FormatText), string(FormatLogfmt), string(FormatJSON)}
	AllLevels  = []string{string(LevelDebug), string(LevelInfo), string(LevelWarn), string(LevelError)}

	levels = map[Level]slog.Level{
		LevelDebug: slog.LevelDebug,
		LevelInfo:  slog.LevelInfo,
		LevelWarn:  slog.LevelWarn,
		"warning":  slog.LevelWarn,
		LevelError: slog.LevelError,
	}
)

// Options selects the outputs of a [Logger].
type Options struct {
	// Level and Format apply to the console.
	Level  string
	Format string
	// File, when set, receives JSON records at FileLevel (or Level).
	File      string
	FileLevel string
}

// Logger is a console handler, teed into a log file when one is configured.
type Logger struct {
	handler slog.Handler
	file    *os.File
}

// New builds the handlers described by opts. The console handler writes to
// console. Callers must [Logger.Close] the logger to release the log file.
func New(console io.Writer, opts Options) (*Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	format, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	l := &Logger{handler: NewHandler(console, lvl, format)}

	if opts.File == "" {
		return l, nil
	}

	fileLvl := lvl
	if opts.FileLevel != "" {
		fileLvl, err = ParseLevel(opts.FileLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: log file: %w", ErrInvalidArgument, err)
		}
	}

	l.file, err = openFile(opts.File)
	if err != nil {
		return nil, err
	}

	// Log files are always JSON, so other tools can process them.
	l.handler = Tee(l.handler, NewHandler(l.file, fileLvl, FormatJSON))

	return l, nil
}

// Handler returns the combined handler.
func (l *Logger) Handler() slog.Handler {
	return l.handler
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}

	err := l.file.Close()
	if err != nil {
		return fmt.Errorf("close log file: %w", err)
	}

	return nil
}

// NewHandler returns a handler writing records at or above lvl to w.
// Source locations are only reported at debug level.
func NewHandler(w io.Writer, lvl slog.Level, format Format) slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource: lvl <= slog.LevelDebug,
		Level:     lvl,
	}

	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatLogfmt:
		return slog.NewTextHandler(w, opts)
	case FormatText:
		logger := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(int32(lvl)), //nolint:gosec // G115: levels are small.
			Formatter:       charmlog.TextFormatter,
			ReportTimestamp: true,
			ReportCaller:    opts.AddSource,
			TimeFormat:      time.TimeOnly,
		})
		logger.SetColorProfile(termenv.ColorProfile())

		return logger
	}

	return nil
}

// ParseLevel parses a case-insensitive level name; "warning" means warn.
func ParseLevel(s string) (slog.Level, error) {
	lvl, ok := levels[Level(strings.ToLower(s))]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownLogLevel, s)
	}

	return lvl, nil
}

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatLogfmt, FormatJSON:
		return f, nil
	}

	return "", fmt.Errorf("%w %q", ErrUnknownLogFormat, s)
}

func openFile(path string) (*os.File, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // G304: user-provided log path.
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return f, nil
}
