// Package log provides the leveled, structured logger shared by every
// ballotbox package. It wraps zerolog with a printf (`f`) and a key/value
// (`w`) flavour for each level.
package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"runtime/debug"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	logTestWriterName = "log_test_writer"
)

var (
	log      zerolog.Logger
	logLevel = LogLevelError

	// panicOnInvalidChars makes the logger panic when a message contains
	// invalid UTF-8, which usually means raw bytes were logged with %s.
	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"

	// logTestWriter is used by tests and benchmarks as the output when the
	// logTestWriterName output is requested.
	logTestWriter io.Writer = os.Stderr
)

func init() {
	// Allow overriding the default log level via $LOG_LEVEL, so that the
	// environment variable can be set globally even when running tests.
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = LogLevelError
	}
	Init(level, "stderr", nil)
}

// invalidCharChecker reports log lines carrying invalid UTF-8.
type invalidCharChecker struct{}

func (invalidCharChecker) Write(p []byte) (int, error) {
	// zerolog escapes invalid UTF-8 as the replacement character
	if bytes.ContainsRune(p, utf8.RuneError) || bytes.Contains(p, []byte(`\ufffd`)) {
		panic(fmt.Sprintf("log line with invalid chars: %q", p))
	}
	return len(p), nil
}

// errorLevelWriter forwards warn and error entries to a secondary writer.
type errorLevelWriter struct {
	io.Writer
}

func (w *errorLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.Write(p)
}

// Init initializes the logger. Output can be "stdout", "stderr" or a file
// path; errorOutput, if not nil, receives a copy of warn and error entries.
func Init(level, output string, errorOutput io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot create log output: %v", err))
		}
		out = f
	}
	if out == os.Stdout || out == os.Stderr {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339Nano,
		}
	}
	outputs := []io.Writer{out}
	if errorOutput != nil {
		outputs = append(outputs, &errorLevelWriter{zerolog.ConsoleWriter{
			Out:        errorOutput,
			TimeFormat: time.RFC3339Nano,
			NoColor:    true,
		}})
	}
	if panicOnInvalidChars {
		outputs = append(outputs, invalidCharChecker{})
	}

	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		return fmt.Sprintf("%s/%s:%d", path.Base(path.Dir(file)), path.Base(file), line)
	}
	// skip one extra frame so the caller of the wrapper gets reported
	log = zerolog.New(zerolog.MultiLevelWriter(outputs...)).
		With().Timestamp().CallerWithSkipFrameCount(3).Logger()

	switch level {
	case LogLevelDebug:
		log = log.Level(zerolog.DebugLevel)
	case LogLevelInfo:
		log = log.Level(zerolog.InfoLevel)
	case LogLevelWarn:
		log = log.Level(zerolog.WarnLevel)
	case LogLevelError:
		log = log.Level(zerolog.ErrorLevel)
	default:
		panic(fmt.Sprintf("invalid log level: %q", level))
	}
	logLevel = level
	log.Info().Msgf("logger construction succeeded at level %s with output %s", level, output)
}

// Logger returns the underlying zerolog logger, for packages that need to
// build child loggers.
func Logger() *zerolog.Logger {
	return &log
}

// Level returns the current log level.
func Level() string {
	return logLevel
}

// Debug sends a debug level log message.
func Debug(args ...any) {
	if log.GetLevel() > zerolog.DebugLevel {
		return
	}
	log.Debug().Msg(fmt.Sprint(args...))
}

// Info sends an info level log message.
func Info(args ...any) {
	log.Info().Msg(fmt.Sprint(args...))
}

// Monitor is a wrapper around Info that prints in a key/value form used by
// periodic status reports.
func Monitor(msg string, args map[string]any) {
	log.Info().Fields(args).Msg(msg)
}

// Warn sends a warn level log message.
func Warn(args ...any) {
	log.Warn().Msg(fmt.Sprint(args...))
}

// Error sends an error level log message.
func Error(args ...any) {
	log.Error().Msg(fmt.Sprint(args...))
}

// Fatal sends a fatal level log message and exits.
func Fatal(args ...any) {
	log.Fatal().Msg(fmt.Sprint(args...) + "\n" + string(debug.Stack()))
}

// Debugf sends a formatted debug level log message.
func Debugf(template string, args ...any) {
	log.Debug().Msgf(template, args...)
}

// Infof sends a formatted info level log message.
func Infof(template string, args ...any) {
	log.Info().Msgf(template, args...)
}

// Warnf sends a formatted warn level log message.
func Warnf(template string, args ...any) {
	log.Warn().Msgf(template, args...)
}

// Errorf sends a formatted error level log message.
func Errorf(template string, args ...any) {
	log.Error().Msgf(template, args...)
}

// Fatalf sends a formatted fatal level log message and exits.
func Fatalf(template string, args ...any) {
	Fatal(fmt.Sprintf(template, args...))
}

// Debugw sends a debug level log message with key/value pairs.
func Debugw(msg string, keyvalues ...any) {
	log.Debug().Fields(keyvalues).Msg(msg)
}

// Infow sends an info level log message with key/value pairs.
func Infow(msg string, keyvalues ...any) {
	log.Info().Fields(keyvalues).Msg(msg)
}

// Warnw sends a warn level log message with key/value pairs.
func Warnw(msg string, keyvalues ...any) {
	log.Warn().Fields(keyvalues).Msg(msg)
}

// Errorw sends an error level log message with a special format for errors.
func Errorw(err error, msg string) {
	log.Error().Err(err).Msg(msg)
}
