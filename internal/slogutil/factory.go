package slogutil

import (
	"io"
	"log/slog"

	"botlint/internal/config"
	"botlint/internal/paths"
)

// Factory builds loggers from the logging config. The CLI level, when set,
// wins over the configured one.
type Factory struct {
	cfg      config.LoggingConfig
	cliLevel *slog.Level
	closers  []io.Closer
}

// NewFactory creates a factory. cliLevel is nil when no flag was given.
func NewFactory(cfg config.LoggingConfig, cliLevel *slog.Level) *Factory {
	return &Factory{cfg: cfg, cliLevel: cliLevel}
}

// Level returns the effective level.
func (f *Factory) Level() slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	return LevelFromString(f.cfg.Level)
}

func (f *Factory) format() Format {
	return Format(f.cfg.Format)
}

// Console returns a logger writing to w, typically stderr.
func (f *Factory) Console(w io.Writer) *slog.Logger {
	return slog.New(NewHandler(w, f.format(), f.Level()))
}

// Server returns a logger writing both to w and to the rotating log file
// under root. If the file cannot be opened, only w is used and the error
// is reported through that logger.
func (f *Factory) Server(root string, w io.Writer) *slog.Logger {
	console := NewHandler(w, f.format(), f.Level())

	logPath := paths.ServerLogPath(root)
	fileLogger, closer, err := NewFileLoggerWithRotation(logPath, f.format(), f.Level(), f.cfg.MaxSize, f.cfg.MaxBackups)
	if err != nil {
		logger := slog.New(console)
		logger.Warn("Server log file unavailable", "path", logPath, "error", err.Error())
		return logger
	}

	f.closers = append(f.closers, closer)
	return slog.New(NewTeeHandler(console, fileLogger.Handler()))
}

// Close closes all open log files.
func (f *Factory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
