// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package log wraps github.com/luxfi/log, the teacher's logging facade,
// the way log/nolog.go did: a no-op implementation for tests and an
// engine default, plus (in log.go) a zap-backed implementation for real
// use. safrole.Engine and engine.Transition take a log.Logger instead of
// reaching for a package-level singleton; disputes.Engine, the pvm package
// and hostcall.Dispatcher do no logging.
package log

import (
	"context"
	"log/slog"

	"github.com/luxfi/log"
	"go.uber.org/zap"
)

// Logger is the logging interface every engine component depends on.
type Logger = log.Logger

// noOp is a no-op implementation of log.Logger.
type noOp struct{}

// NoOp returns a logger that discards everything.
func NoOp() Logger {
	return noOp{}
}

func (n noOp) With(ctx ...interface{}) log.Logger { return n }
func (n noOp) New(ctx ...interface{}) log.Logger  { return n }

func (noOp) Log(level slog.Level, msg string, ctx ...interface{}) {}
func (noOp) Trace(msg string, ctx ...interface{})                 {}
func (noOp) Debug(msg string, ctx ...interface{})                 {}
func (noOp) Info(msg string, ctx ...interface{})                  {}
func (noOp) Warn(msg string, ctx ...interface{})                  {}
func (noOp) Error(msg string, ctx ...interface{})                 {}
func (noOp) Crit(msg string, ctx ...interface{})                  {}
func (noOp) WriteLog(level slog.Level, msg string, attrs ...any)  {}

func (noOp) Enabled(ctx context.Context, level slog.Level) bool { return false }
func (noOp) Handler() slog.Handler                              { return nil }

func (noOp) Fatal(msg string, fields ...zap.Field) {}
func (noOp) Verbo(msg string, fields ...zap.Field) {}

func (n noOp) WithFields(fields ...zap.Field) log.Logger  { return n }
func (n noOp) WithOptions(opts ...zap.Option) log.Logger  { return n }

func (noOp) SetLevel(level slog.Level)       {}
func (noOp) GetLevel() slog.Level            { return slog.Level(0) }
func (noOp) EnabledLevel(lvl slog.Level) bool { return false }

func (noOp) StopOnPanic()               {}
func (noOp) RecoverAndPanic(f func())   { f() }
func (noOp) RecoverAndExit(f, exit func()) { f() }
func (noOp) Stop()                      {}

func (noOp) Write(p []byte) (n int, err error) { return len(p), nil }
