/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package zaplog is a logger provider for the SDK logging API backed by zap.
// Install it with logging.Initialize before anything logs.
package zaplog

import (
	"io"
	"os"
	"strings"

	"github.com/hyperledger/fabric-sdk-go/pkg/core/logging/api"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// Console is a human readable encoding
	Console = "console"
	// JSON is a structured encoding
	JSON = "json"
)

// Options of the provider.
type Options struct {
	// Level is one of debug, info, warning, error or critical.
	Level string
	// Format is Console or JSON.
	Format string
	// Output defaults to stderr.
	Output io.Writer
}

// Provider creates module loggers sharing one zap core.
type Provider struct {
	base  *zap.Logger
	level zap.AtomicLevel
}

// New returns a provider configured by opts.
func New(opts Options) (*Provider, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	atomic := zap.NewAtomicLevelAt(level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(opts.Format) {
	case "", Console:
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case JSON:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, errors.Errorf("unsupported log format %q", opts.Format)
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(output)), atomic)
	return &Provider{base: zap.New(core), level: atomic}, nil
}

// NewWithCore returns a provider writing to core, whose own level applies.
func NewWithCore(core zapcore.Core) *Provider {
	return &Provider{base: zap.New(core), level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

// ParseLevel converts a log level name as used in the SDK configuration.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "critical":
		return zapcore.DPanicLevel, nil
	}
	return zapcore.InfoLevel, errors.Errorf("unknown log level %q", level)
}

// SetLevel changes the level of all module loggers.
func (p *Provider) SetLevel(level zapcore.Level) {
	p.level.SetLevel(level)
}

// Level of the module loggers.
func (p *Provider) Level() zapcore.Level {
	return p.level.Level()
}

// GetLogger returns the logger of a module.
func (p *Provider) GetLogger(module string) api.Logger {
	return &Log{sugar: p.base.Named(module).Sugar()}
}

// Sync flushes buffered entries.
func (p *Provider) Sync() error {
	return p.base.Sync()
}

// Log implements api.Logger. Print logs at info level.
type Log struct {
	sugar *zap.SugaredLogger
}

// Fatal logs and exits
func (l *Log) Fatal(v ...interface{}) { l.sugar.Fatal(v...) }

// Fatalf logs and exits
func (l *Log) Fatalf(format string, v ...interface{}) { l.sugar.Fatalf(format, v...) }

// Fatalln logs and exits
func (l *Log) Fatalln(v ...interface{}) { l.sugar.Fatalln(v...) }

// Panic logs and panics
func (l *Log) Panic(v ...interface{}) { l.sugar.Panic(v...) }

// Panicf logs and panics
func (l *Log) Panicf(format string, v ...interface{}) { l.sugar.Panicf(format, v...) }

// Panicln logs and panics
func (l *Log) Panicln(v ...interface{}) { l.sugar.Panicln(v...) }

// Print logs at info level
func (l *Log) Print(v ...interface{}) { l.sugar.Info(v...) }

// Printf logs at info level
func (l *Log) Printf(format string, v ...interface{}) { l.sugar.Infof(format, v...) }

// Println logs at info level
func (l *Log) Println(v ...interface{}) { l.sugar.Infoln(v...) }

// Debug logs at debug level
func (l *Log) Debug(args ...interface{}) { l.sugar.Debug(args...) }

// Debugf logs at debug level
func (l *Log) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

// Debugln logs at debug level
func (l *Log) Debugln(args ...interface{}) { l.sugar.Debugln(args...) }

// Info logs at info level
func (l *Log) Info(args ...interface{}) { l.sugar.Info(args...) }

// Infof logs at info level
func (l *Log) Infof(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

// Infoln logs at info level
func (l *Log) Infoln(args ...interface{}) { l.sugar.Infoln(args...) }

// Warn logs at warning level
func (l *Log) Warn(args ...interface{}) { l.sugar.Warn(args...) }

// Warnf logs at warning level
func (l *Log) Warnf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

// Warnln logs at warning level
func (l *Log) Warnln(args ...interface{}) { l.sugar.Warnln(args...) }

// Error logs at error level
func (l *Log) Error(args ...interface{}) { l.sugar.Error(args...) }

// Errorf logs at error level
func (l *Log) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Errorln logs at error level
func (l *Log) Errorln(args ...interface{}) { l.sugar.Errorln(args...) }
