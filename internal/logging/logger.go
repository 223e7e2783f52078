// Package logging provides the logging facade shared by the server and the
// command-line front end. Components depend on the Logger interface so that
// they can be driven by zerolog in production and by a standard library
// logger in tests or embedded deployments.
package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging interface used across the application.
type Logger interface {
	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Error logs an error message with the associated error.
	Error(msg string, err error, fields ...Field)

	// Debug logs a debug message.
	Debug(msg string, fields ...Field)

	// Printf provides compatibility with log.Logger.
	Printf(format string, args ...any)

	// Println provides compatibility with log.Logger.
	Println(args ...any)
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field.
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Rat creates a field holding an exact rational in lowest terms. A nil value
// is logged as "<nil>".
func Rat(key string, value *big.Rat) Field {
	if value == nil {
		return Field{Key: key, Value: "<nil>"}
	}
	return Field{Key: key, Value: value.RatString()}
}

// Err creates an error field.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// ZerologAdapter adapts a zerolog.Logger to the Logger interface.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a Logger backed by zerolog.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// NewDefaultLogger creates a Logger that writes JSON lines to stderr.
func NewDefaultLogger() *ZerologAdapter {
	return NewZerologAdapter(
		zerolog.New(os.Stderr).With().Timestamp().Logger(),
	)
}

// NewLogger creates a Logger writing to w, tagging every entry with the
// given component name.
func NewLogger(w io.Writer, component string) *ZerologAdapter {
	return NewZerologAdapter(
		zerolog.New(w).With().Str("component", component).Timestamp().Logger(),
	)
}

func applyFields(event *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			event = event.Str(f.Key, v)
		case int:
			event = event.Int(f.Key, v)
		case int64:
			event = event.Int64(f.Key, v)
		case float64:
			event = event.Float64(f.Key, v)
		case time.Duration:
			event = event.Dur(f.Key, v)
		case error:
			event = event.AnErr(f.Key, v)
		case bool:
			event = event.Bool(f.Key, v)
		default:
			event = event.Interface(f.Key, v)
		}
	}
	return event
}

// Info logs an informational message.
func (z *ZerologAdapter) Info(msg string, fields ...Field) {
	applyFields(z.logger.Info(), fields).Msg(msg)
}

// Error logs an error message.
func (z *ZerologAdapter) Error(msg string, err error, fields ...Field) {
	applyFields(z.logger.Error().Err(err), fields).Msg(msg)
}

// Debug logs a debug message.
func (z *ZerologAdapter) Debug(msg string, fields ...Field) {
	applyFields(z.logger.Debug(), fields).Msg(msg)
}

// Printf logs a formatted message at info level.
func (z *ZerologAdapter) Printf(format string, args ...any) {
	z.logger.Info().Msgf(format, args...)
}

// Println logs its operands at info level, separated by spaces.
func (z *ZerologAdapter) Println(args ...any) {
	z.logger.Info().Msg(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

// StdLoggerAdapter adapts a standard log.Logger to the Logger interface.
type StdLoggerAdapter struct {
	logger *stdlog.Logger
}

// NewStdLoggerAdapter creates a Logger backed by a standard log.Logger.
func NewStdLoggerAdapter(logger *stdlog.Logger) *StdLoggerAdapter {
	return &StdLoggerAdapter{logger: logger}
}

func (s *StdLoggerAdapter) write(level, msg string, err error, fields []Field) {
	line := "[" + level + "] " + msg
	if err != nil {
		line += ": " + err.Error()
	}
	if len(fields) > 0 {
		s.logger.Printf("%s %v", line, fields)
		return
	}
	s.logger.Println(line)
}

// Info logs an informational message.
func (s *StdLoggerAdapter) Info(msg string, fields ...Field) {
	s.write("INFO", msg, nil, fields)
}

// Error logs an error message.
func (s *StdLoggerAdapter) Error(msg string, err error, fields ...Field) {
	s.write("ERROR", msg, err, fields)
}

// Debug logs a debug message.
func (s *StdLoggerAdapter) Debug(msg string, fields ...Field) {
	s.write("DEBUG", msg, nil, fields)
}

// Printf forwards to the wrapped logger.
func (s *StdLoggerAdapter) Printf(format string, args ...any) {
	s.logger.Printf(format, args...)
}

// Println forwards to the wrapped logger.
func (s *StdLoggerAdapter) Println(args ...any) {
	s.logger.Println(args...)
}
