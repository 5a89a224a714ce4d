package logger

import (
	"go.uber.org/zap"
)

type zapLogger struct {
	sugar *zap.SugaredLogger
}

var _ Logger = &zapLogger{}

// NewZap adapts a zap.Logger to the Logger interface.
func NewZap(l *zap.Logger) Logger {
	return &zapLogger{
		// skip the adapter frame so call sites are reported correctly
		sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar(),
	}
}

func (z *zapLogger) Debugf(format string, args ...any) {
	z.sugar.Debugf(format, args...)
}

func (z *zapLogger) Infof(format string, args ...any) {
	z.sugar.Infof(format, args...)
}

func (z *zapLogger) Warnf(format string, args ...any) {
	z.sugar.Warnf(format, args...)
}

func (z *zapLogger) Errorf(format string, args ...any) {
	z.sugar.Errorf(format, args...)
}
