package main

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type logOptions struct {
	Level  string
	Format string // console | json
	File   string // optional rotated log file, in addition to stderr
}

// newLogger builds the CLI logger. Diagnostics go to stderr so that stdout
// carries only the command's result.
func newLogger(o logOptions, stderr io.Writer) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	switch strings.ToLower(o.Level) {
	case "debug":
		level.SetLevel(zap.DebugLevel)
	case "info":
		level.SetLevel(zap.InfoLevel)
	case "", "warn", "warning":
		level.SetLevel(zap.WarnLevel)
	case "error":
		level.SetLevel(zap.ErrorLevel)
	default:
		return nil, errors.Errorf("unknown log level %q", o.Level)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	switch strings.ToLower(o.Format) {
	case "", "console":
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, errors.Errorf("unknown log format %q", o.Format)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.AddSync(stderr), level)}
	if o.File != "" {
		ws := zapcore.AddSync(&lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, level))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}
