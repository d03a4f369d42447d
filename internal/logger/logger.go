// Package logger provides structured logging for helpindex
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog with helpindex-specific functionality
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // pretty-print for development
	Output     io.Writer
	WithCaller bool
}

// NewLogger creates a new structured logger
func NewLogger(cfg Config) *Logger {
	// Set global log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	// Pretty printing for development
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	// Create logger
	zlog := zerolog.New(output).
		With().
		Timestamp().
		Str("service", "helpindex").
		Logger()

	// Add caller information if requested
	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}

	return &Logger{zlog: zlog}
}

// GetZerolog returns the underlying zerolog logger
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}

// Info logs an info message
func (l *Logger) Info(msg string) *zerolog.Event {
	return l.zlog.Info().Str("msg", msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) *zerolog.Event {
	return l.zlog.Debug().Str("msg", msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) *zerolog.Event {
	return l.zlog.Warn().Str("msg", msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) *zerolog.Event {
	return l.zlog.Error().Str("msg", msg)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string) *zerolog.Event {
	return l.zlog.Fatal().Str("msg", msg)
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.zlog.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zlog: ctx.Logger()}
}

// ParserLogger returns a logger for structure parsing operations
func (l *Logger) ParserLogger() *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "parser").
			Logger(),
	}
}

// IndexLogger returns a logger for index build operations
func (l *Logger) IndexLogger(operation string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "indexer").
			Str("operation", operation).
			Logger(),
	}
}

// SearchLogger returns a logger for search operations
func (l *Logger) SearchLogger() *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "search").
			Logger(),
	}
}

// ExtractLogger returns a logger for content extraction
func (l *Logger) ExtractLogger() *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "extract").
			Logger(),
	}
}

// LogParseComplete logs a finished structure parse with counts
func (l *Logger) LogParseComplete(source string, nodes int, pages int, reattached int, duration time.Duration) {
	l.zlog.Info().
		Str("component", "parser").
		Str("source", source).
		Int("nodes", nodes).
		Int("pages", pages).
		Int("reattached", reattached).
		Dur("duration_ms", duration).
		Msg("Structure parse completed")
}

// LogRebuildStart logs the start of an index rebuild with its reason
func (l *Logger) LogRebuildStart(reason string, indexPath string) {
	l.zlog.Info().
		Str("component", "indexer").
		Str("event", "rebuild_start").
		Str("reason", reason).
		Str("index", indexPath).
		Msg("Index rebuild starting")
}

// LogRebuildComplete logs a finished rebuild with document counts
func (l *Logger) LogRebuildComplete(documents int, duration time.Duration, err error) {
	event := l.zlog.Info().
		Str("component", "indexer").
		Str("event", "rebuild_complete").
		Int("documents", documents).
		Dur("duration_ms", duration)

	if err != nil {
		event = l.zlog.Error().
			Str("component", "indexer").
			Str("event", "rebuild_failed").
			Dur("duration_ms", duration).
			Err(err)
	}

	event.Msg("Index rebuild completed")
}

// LogSearch logs a search query with result counts
func (l *Logger) LogSearch(query string, hits uint64, duration time.Duration, err error) {
	event := l.zlog.Debug().
		Str("component", "search").
		Str("query", query).
		Uint64("hits", hits).
		Dur("duration_ms", duration)

	if err != nil {
		event = l.zlog.Error().
			Str("component", "search").
			Str("query", query).
			Dur("duration_ms", duration).
			Err(err)
	}

	event.Msg("Search completed")
}

// Global logger instance
var globalLogger *Logger

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(cfg Config) {
	globalLogger = NewLogger(cfg)
	log.Logger = *globalLogger.GetZerolog()
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		// Initialize with defaults if not set
		InitGlobalLogger(Config{
			Level:  "info",
			Pretty: true,
		})
	}
	return globalLogger
}
