// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// File enables a rotating JSON log alongside the console output.
	File string
}

// New returns a console logger, teeing to a rotated JSON file when
// opts.File is set. The returned closer releases the file.
func New(opts Options) (*zap.Logger, io.Closer) {
	var rotation *lumberjack.Logger
	if opts.File != "" {
		rotation = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
	}
	logger := newZap(zapcore.AddSync(os.Stdout), rotation, ParseLevel(opts.Level))
	if rotation == nil {
		return logger, io.NopCloser(nil)
	}
	return logger, rotation
}

func newZap(console zapcore.WriteSyncer, rotation *lumberjack.Logger, level zapcore.Level) *zap.Logger {
	encodeConfig := zap.NewProductionEncoderConfig()
	encodeConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encodeConfig), console, level),
	}
	if rotation != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encodeConfig), zapcore.AddSync(rotation), level))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// ParseLevel maps debug, info, warn and error; anything else is info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
