package core

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Module is anything that can tag its own log lines, the same module-string
// convention the teacher uses everywhere a component logs
// (fw/mgmt/*.go's `func (m *XModule) String() string { return "mgmt-fib" }`).
type Module interface {
	String() string
}

// Logger is a small leveled-logging facade, API-compatible with the
// teacher's std/log package (Trace/Debug/Info/Warn/Error/Fatal, each taking
// a Module plus a message and key-value pairs), backed by zap instead of a
// hand-rolled writer.
type Logger struct {
	level atomic.Int32
	zap   *zap.SugaredLogger
}

var defaultLogger = newDefault()

func newDefault() *Logger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	l := &Logger{zap: z.Sugar()}
	l.level.Store(int32(LevelInfo))
	return l
}

// Default returns the process-wide logger.
func Default() *Logger { return defaultLogger }

// SetLevel sets the minimum level that will be emitted.
func (l *Logger) SetLevel(lv Level) { l.level.Store(int32(lv)) }

// Level returns the current minimum emitted level.
func (l *Logger) Level() Level { return Level(l.level.Load()) }

func (l *Logger) enabled(lv Level) bool { return lv >= l.Level() }

func kv(module Module, msg string, kvs []any) (string, []any) {
	out := make([]any, 0, len(kvs)+2)
	out = append(out, "module", module.String())
	out = append(out, kvs...)
	return msg, out
}

func (l *Logger) Trace(module Module, msg string, kvs ...any) {
	if !l.enabled(LevelTrace) {
		return
	}
	m, k := kv(module, msg, kvs)
	l.zap.Debugw(m, k...)
}

func (l *Logger) Debug(module Module, msg string, kvs ...any) {
	if !l.enabled(LevelDebug) {
		return
	}
	m, k := kv(module, msg, kvs)
	l.zap.Debugw(m, k...)
}

func (l *Logger) Info(module Module, msg string, kvs ...any) {
	if !l.enabled(LevelInfo) {
		return
	}
	m, k := kv(module, msg, kvs)
	l.zap.Infow(m, k...)
}

func (l *Logger) Warn(module Module, msg string, kvs ...any) {
	if !l.enabled(LevelWarn) {
		return
	}
	m, k := kv(module, msg, kvs)
	l.zap.Warnw(m, k...)
}

func (l *Logger) Error(module Module, msg string, kvs ...any) {
	if !l.enabled(LevelError) {
		return
	}
	m, k := kv(module, msg, kvs)
	l.zap.Errorw(m, k...)
}

// Fatal logs at fatal level and terminates the process via zap's own Fatal
// (os.Exit(1) after a flush), matching fw/cmd/profiler.go's use of
// core.Log.Fatal for unrecoverable startup failures.
func (l *Logger) Fatal(module Module, msg string, kvs ...any) {
	m, k := kv(module, msg, kvs)
	l.zap.Fatalw(m, k...)
}

// Log is the process-wide logger, used the same way the teacher's
// fw/mgmt/*.go calls `core.Log.Info(module, msg, kv...)` at every call site.
var Log = defaultLogger
