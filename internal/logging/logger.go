// Package logging wraps the standard logger over stdout plus a rotating
// file sink, and hands out UUID-tagged child loggers for per-connection
// correlation.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the rotating file sink. A zero Config disables the
// file sink and logs to stdout only.
type Config struct {
	Enabled    bool
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Logger writes leveled, timestamped lines to stdout and, if configured,
// a lumberjack-rotated file.
type Logger struct {
	*log.Logger
	file *lumberjack.Logger
	tag  string
}

// New creates a top-level Logger from cfg.
func New(cfg Config) *Logger {
	writers := []io.Writer{os.Stdout}

	var file *lumberjack.Logger
	if cfg.Enabled && cfg.FilePath != "" {
		file = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		writers = append(writers, file)
	}

	return &Logger{
		Logger: log.New(io.MultiWriter(writers...), "", 0),
		file:   file,
	}
}

// WithSession returns a child Logger that prefixes every line with a
// freshly-minted correlation id, so a busy server's interleaved log lines
// for one connection's handshake and eventual disconnect can be grepped
// out together. The id never goes on the wire.
func (l *Logger) WithSession() *Logger {
	return &Logger{Logger: l.Logger, file: l.file, tag: uuid.NewString()[:8]}
}

func (l *Logger) line(level, format string, args ...any) string {
	ts := time.Now().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, args...)
	if l.tag != "" {
		return fmt.Sprintf("[%s] %s [%s] %s", ts, level, l.tag, msg)
	}
	return fmt.Sprintf("[%s] %s %s", ts, level, msg)
}

// Info logs an informational line.
func (l *Logger) Info(format string, args ...any) { l.Print(l.line("INFO", format, args...)) }

// Warn logs a warning line.
func (l *Logger) Warn(format string, args ...any) { l.Print(l.line("WARN", format, args...)) }

// Error logs an error line.
func (l *Logger) Error(format string, args ...any) { l.Print(l.line("ERROR", format, args...)) }

// Debug logs a debug line.
func (l *Logger) Debug(format string, args ...any) { l.Print(l.line("DEBUG", format, args...)) }

// Close releases the rotating file sink, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
