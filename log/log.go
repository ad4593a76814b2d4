// Copyright (C) 2019-2026, Lux Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package log provides the structured logger threaded through the
// consensus core, backed by go.uber.org/zap — the teacher's own logging
// library (luxfi/consensus/log wraps the same package).
package log

import "go.uber.org/zap"

// Logger is the minimal structured-logging surface the consensus core
// depends on. Components accept a Logger via constructor injection rather
// than reaching for a package-level global, per SPEC_FULL §2.1.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
}

type zapLogger struct {
	l *zap.Logger
}

// New wraps a *zap.Logger as a Logger.
func New(l *zap.Logger) Logger {
	return &zapLogger{l: l}
}

// NewProduction returns a Logger backed by zap's production configuration.
func NewProduction() (Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return New(l), nil
}

func (z *zapLogger) Debug(msg string, fields ...zap.Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...zap.Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...zap.Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...zap.Field) { z.l.Error(msg, fields...) }
func (z *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{l: z.l.With(fields...)}
}

type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything, for tests —
// matching the teacher's NewNoOpLogger() pattern.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...zap.Field)  {}
func (nopLogger) Info(string, ...zap.Field)   {}
func (nopLogger) Warn(string, ...zap.Field)   {}
func (nopLogger) Error(string, ...zap.Field)  {}
func (n nopLogger) With(...zap.Field) Logger  { return n }
