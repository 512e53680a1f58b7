// Package log provides structured logging for featsel.
//
// The Logger interface is a thin, slog-compatible surface so estimators and
// selectors can log without depending on a concrete backend. The default
// implementation forwards to slog.Default(), which SetupLogger configures.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("feature_selection").With(
//	    log.ModelNameKey, "RFE",
//	)
//	logger.Info("elimination round",
//	    log.FeaturesKey, 13,
//	    log.EliminatedKey, 1,
//	)
package log

import (
	"context"
	"log/slog"
	"sync"
)

// Logger defines a structured logging interface compatible with log/slog.
//
// Fields are alternating key/value pairs, exactly as slog.Logger accepts
// them. With returns a child logger that adds the given fields to every
// record.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	// Error logs at error level. Pass the error under ErrAttrKey (or use
	// ErrAttr) to get its stack trace attached.
	Error(msg string, fields ...any)
	With(fields ...any) Logger
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, values are compatible with slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates loggers; tests swap in a TestLoggerProvider.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
	SetLevel(level Level)
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, fields...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.l.Error(msg, fields...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}

type slogProvider struct{}

func (p *slogProvider) GetLogger() Logger {
	return &slogLogger{l: slog.Default()}
}

func (p *slogProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel changes the level of the handler installed by SetupLogger.
func (p *slogProvider) SetLevel(level Level) {
	levelVar.Set(slog.Level(level))
}

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = &slogProvider{}
)

// SetLoggerProvider replaces the global provider. It returns the previous
// one so tests can restore it.
func SetLoggerProvider(p LoggerProvider) LoggerProvider {
	providerMu.Lock()
	defer providerMu.Unlock()
	prev := provider
	provider = p
	return prev
}

// GetLogger returns a logger from the global provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with ComponentKey=name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}
