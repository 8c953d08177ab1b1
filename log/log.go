package log

import (
	"context"
	"log/slog"

	luxlog "github.com/luxfi/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger is a structured log.Logger backed by zap, used wherever the
// engine needs real output (CLIs, long-running nodes); tests use NoOp.
type zapLogger struct {
	z    *zap.SugaredLogger
	lvl  zap.AtomicLevel
}

// New returns a production zap-backed Logger named name.
func New(name string) Logger {
	lvl := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	base, err := cfg.Build()
	if err != nil {
		return NoOp()
	}
	return &zapLogger{z: base.Sugar().Named(name), lvl: lvl}
}

func (l *zapLogger) With(ctx ...interface{}) luxlog.Logger {
	return &zapLogger{z: l.z.With(ctx...), lvl: l.lvl}
}

func (l *zapLogger) New(ctx ...interface{}) luxlog.Logger { return l.With(ctx...) }

func (l *zapLogger) Log(level slog.Level, msg string, ctx ...interface{}) {
	switch {
	case level >= slog.LevelError:
		l.z.Errorw(msg, ctx...)
	case level >= slog.LevelWarn:
		l.z.Warnw(msg, ctx...)
	case level >= slog.LevelInfo:
		l.z.Infow(msg, ctx...)
	default:
		l.z.Debugw(msg, ctx...)
	}
}

func (l *zapLogger) Trace(msg string, ctx ...interface{}) { l.z.Debugw(msg, ctx...) }
func (l *zapLogger) Debug(msg string, ctx ...interface{}) { l.z.Debugw(msg, ctx...) }
func (l *zapLogger) Info(msg string, ctx ...interface{})  { l.z.Infow(msg, ctx...) }
func (l *zapLogger) Warn(msg string, ctx ...interface{})  { l.z.Warnw(msg, ctx...) }
func (l *zapLogger) Error(msg string, ctx ...interface{}) { l.z.Errorw(msg, ctx...) }
func (l *zapLogger) Crit(msg string, ctx ...interface{})  { l.z.Fatalw(msg, ctx...) }

func (l *zapLogger) WriteLog(level slog.Level, msg string, attrs ...any) {
	l.Log(level, msg, attrs...)
}

func (l *zapLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.lvl.Enabled(zapcore.Level(level / 4))
}
func (l *zapLogger) Handler() slog.Handler { return nil }

func (l *zapLogger) Fatal(msg string, fields ...zap.Field) { l.z.Desugar().Fatal(msg, fields...) }
func (l *zapLogger) Verbo(msg string, fields ...zap.Field) { l.z.Desugar().Debug(msg, fields...) }

func (l *zapLogger) WithFields(fields ...zap.Field) luxlog.Logger {
	return &zapLogger{z: l.z.Desugar().With(fields...).Sugar(), lvl: l.lvl}
}
func (l *zapLogger) WithOptions(opts ...zap.Option) luxlog.Logger {
	return &zapLogger{z: l.z.Desugar().WithOptions(opts...).Sugar(), lvl: l.lvl}
}

func (l *zapLogger) SetLevel(level slog.Level) { l.lvl.SetLevel(zapcore.Level(level / 4)) }
func (l *zapLogger) GetLevel() slog.Level      { return slog.Level(l.lvl.Level()) * 4 }
func (l *zapLogger) EnabledLevel(lvl slog.Level) bool { return l.Enabled(context.Background(), lvl) }

func (l *zapLogger) StopOnPanic()                  {}
func (l *zapLogger) RecoverAndPanic(f func())       { f() }
func (l *zapLogger) RecoverAndExit(f, exit func())  { f() }
func (l *zapLogger) Stop()                          { _ = l.z.Sync() }

func (l *zapLogger) Write(p []byte) (int, error) {
	l.z.Info(string(p))
	return len(p), nil
}
