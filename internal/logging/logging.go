package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Level is a zap level name; empty means Default.
	Level string
	// Default is used when Level is empty or unparseable.
	Default zapcore.Level
	// Writer receives JSON log lines. Nil means stderr.
	Writer io.Writer
}

// New builds a JSON logger with ISO8601 timestamps and capitalized levels.
func New(opts Options) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(w), ParseLevel(opts.Level, opts.Default))
	return zap.New(core, zap.AddCaller())
}

// NewFile logs to path (appending), creating parent directories. The returned
// close func flushes and closes the file.
func NewFile(path string, opts Options) (*zap.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	opts.Writer = f
	log := New(opts)
	return log, func() error {
		_ = log.Sync()
		return f.Close()
	}, nil
}

func ParseLevel(s string, def zapcore.Level) zapcore.Level {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return def
	}
	return lvl
}
