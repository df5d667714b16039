// Package logging builds the zap logger shared by the viewer and the
// command-line tools.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var traceLogEnabled atomic.Bool

// SetTraceLogEnabled toggles debug-level output for loggers built afterwards.
func SetTraceLogEnabled(enabled bool) { traceLogEnabled.Store(enabled) }

// TraceLogEnabled reports the current trace flag.
func TraceLogEnabled() bool { return traceLogEnabled.Load() }

// Options selects the sinks of a logger.
type Options struct {
	// Verbose forces debug level regardless of the trace flag.
	Verbose bool
	// File, when set, receives JSON lines in addition to the console.
	File string
}

// New returns a console logger on stderr, teed into a JSON file sink when
// opts.File is set.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Verbose || TraceLogEnabled() {
		level.SetLevel(zapcore.DebugLevel)
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if path := strings.TrimSpace(opts.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(f), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Sync flushes l, ignoring the error stderr reports on terminals.
func Sync(l *zap.Logger) {
	if l == nil {
		return
	}
	if err := l.Sync(); err != nil && !strings.Contains(err.Error(), "inappropriate ioctl") && !strings.Contains(err.Error(), "invalid argument") {
		fmt.Fprintln(os.Stderr, "log sync:", err)
	}
}
