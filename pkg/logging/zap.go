// Package logging provides the default core.Logger implementation, backed by
// go.uber.org/zap's sugared logger for structured, leveled output.
package logging

import (
	"go.uber.org/zap"

	"github.com/felsrender/pathtracer/pkg/core"
)

// ZapLogger adapts a *zap.SugaredLogger to core.Logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a production zap logger (JSON, Info level) wrapped as a core.Logger.
func New() (*ZapLogger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: l.Sugar()}, nil
}

// NewDevelopment builds a console-encoded, Debug-level logger for local runs.
func NewDevelopment() (*ZapLogger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: l.Sugar()}, nil
}

func (z *ZapLogger) Printf(format string, args ...interface{}) {
	z.sugar.Infof(format, args...)
}

// Infow logs msg with structured key/value fields, for any call site reporting more than one
// value.
func (z *ZapLogger) Infow(msg string, keysAndValues ...interface{}) {
	z.sugar.Infow(msg, keysAndValues...)
}

// Sync flushes any buffered log entries; call before process exit.
func (z *ZapLogger) Sync() error {
	return z.sugar.Sync()
}

var _ core.Logger = (*ZapLogger)(nil)
