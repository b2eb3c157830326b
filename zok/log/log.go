// Package log is the process-wide logger, a thin layer over zap.
package log

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Mode is "console" (default) or "file".
	Mode     string
	Filename string
	Level    zapcore.Level
}

const DefaultFilename = "logs/ipv6-checker.log"

var (
	logger atomic.Pointer[zap.SugaredLogger]
	output atomic.Pointer[os.File]
)

func init() {
	logger.Store(newConsole(zapcore.InfoLevel))
}

func newConsole(level zapcore.Level) *zap.SugaredLogger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Sugar()
}

func newFile(f *os.File, level zapcore.Level) *zap.SugaredLogger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.Lock(f), level)
	return zap.New(core).Sugar()
}

// Open replaces the logger. On failure the console logger stays in place.
func Open(opts Options) error {
	if opts.Mode != "file" {
		swap(newConsole(opts.Level), nil)
		return nil
	}

	name := opts.Filename
	if name == "" {
		name = DefaultFilename
	}
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	swap(newFile(f, opts.Level), f)
	return nil
}

func swap(l *zap.SugaredLogger, f *os.File) {
	if prev := logger.Swap(l); prev != nil {
		_ = prev.Sync()
	}
	if prev := output.Swap(f); prev != nil {
		_ = prev.Close()
	}
}

// Close flushes the logger and closes the log file, if any.
func Close() error {
	_ = logger.Load().Sync()
	if f := output.Swap(nil); f != nil {
		return f.Close()
	}
	return nil
}

// Zap exposes the underlying structured logger.
func Zap() *zap.Logger {
	return logger.Load().Desugar()
}

func Debug(args ...any) { logger.Load().Debugln(args...) }
func Info(args ...any)  { logger.Load().Infoln(args...) }
func Warn(args ...any)  { logger.Load().Warnln(args...) }
func Error(args ...any) { logger.Load().Errorln(args...) }

func Debugf(template string, args ...any) { logger.Load().Debugf(template, args...) }
func Infof(template string, args ...any)  { logger.Load().Infof(template, args...) }
func Warnf(template string, args ...any)  { logger.Load().Warnf(template, args...) }
func Errorf(template string, args ...any) { logger.Load().Errorf(template, args...) }
