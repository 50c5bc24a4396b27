// Package logger provides levelled logging for prepkit.
// Debug and info messages print only in verbose mode (the --verbose flag);
// warnings and errors always print. Output goes to stderr as human-readable
// console lines, or as JSON objects when the format is set to FormatJSON.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	format            = FormatConsole
	output  io.Writer = os.Stderr
	zl                = build()
)

// build creates the zerolog logger for the current settings. Callers hold mu.
func build() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	w := output
	if format != FormatJSON {
		w = zerolog.ConsoleWriter{Out: output, TimeFormat: time.TimeOnly, NoColor: !isTerminal(output)}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	zl = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	zl = build()
}

// SetFormat selects console or JSON output. Unknown values fall back to console.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	if f != FormatJSON {
		f = FormatConsole
	}
	format = f
	zl = build()
}

// Logger returns the current structured logger, for callers that attach fields.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return zl
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	zl.Debug().Msgf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	zl.Debug().Str("section", name).Msg("=== " + name + " ===")
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	zl.Info().Msgf(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	zl.Warn().Msgf(format, args...)
}

// Error prints an error message with the error attached.
func Error(err error, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	zl.Error().Err(err).Msgf(format, args...)
}

// Stage records one pipeline stage at debug level, or at warn when it failed.
func Stage(operation, stage string, d time.Duration, err error) {
	mu.RLock()
	defer mu.RUnlock()

	ev := zl.Debug()
	if err != nil {
		ev = zl.Warn().Err(err)
	}
	ev.Str("operation", operation).
		Str("stage", stage).
		Dur("duration", d).
		Msg("stage finished")
}
