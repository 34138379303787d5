// Package logx is LDB's ambient structured logger: level-based
// Info/Debug/Warn/Error calls with key-value context, a captured
// caller frame, and terminal-aware coloring, in the log15 lineage
// (`log.Debug("msg", "k", v)`-style calls).
package logx

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/steakknife/bloomfilter"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "?"
	}
}

var levelColor = map[Level]string{
	LevelDebug: "\x1b[37m",
	LevelInfo:  "\x1b[32m",
	LevelWarn:  "\x1b[33m",
	LevelError: "\x1b[31m",
}

const colorReset = "\x1b[0m"

// Logger writes leveled, key-valued lines to an output stream,
// coloring them when that stream is a terminal.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	color    bool
	minLevel Level

	warnOnce *bloomfilter.Filter
}

// Default is the package-level logger every helper function below
// writes through.
var Default = New(os.Stderr, LevelInfo)

// New returns a Logger writing to w, filtering out anything below
// minLevel. If w is a terminal, output is colorized via
// mattn/go-colorable (so it also works correctly on Windows consoles)
// gated by mattn/go-isatty.
func New(w io.Writer, minLevel Level) *Logger {
	color := false
	out := w
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		out = colorable.NewColorable(f)
		color = true
	}
	// Sized for a modest number of distinct warn-once keys; a false
	// positive makes WarnOnce treat a new key as already seen.
	bf, _ := bloomfilter.NewOptimal(10000, 0.01)
	return &Logger{out: out, color: color, minLevel: minLevel, warnOnce: bf}
}

// log writes one line at the given level with the given message and
// alternating key/value pairs, capturing the immediate caller frame.
func (l *Logger) log(level Level, msg string, kv ...interface{}) {
	if level < l.minLevel {
		return
	}
	frame := stack.Caller(2)

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("15:04:05.000")
	prefix, suffix := "", ""
	if l.color {
		prefix, suffix = levelColor[level], colorReset
	}
	fmt.Fprintf(l.out, "%s%s [%s] %s%s %s", prefix, ts, level, msg, suffix, fmt.Sprintf("%+v", frame))
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(l.out, " %v=%v", kv[i], kv[i+1])
	}
	fmt.Fprintln(l.out)
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(LevelDebug, msg, kv...) }

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, kv ...interface{}) { l.log(LevelInfo, msg, kv...) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, kv ...interface{}) { l.log(LevelWarn, msg, kv...) }

// Error logs at LevelError.
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(LevelError, msg, kv...) }

// WarnOnce logs at LevelWarn the first time it's called with a given
// key in this process's lifetime, and silently skips every repeat —
// for warnings that would otherwise flood the log on every scan cycle
// (e.g. "registry exhausted"). Keys are tracked in a bloom filter, so
// a false positive can suppress even the first occurrence of a key
// that was never logged before.
func (l *Logger) WarnOnce(key string, msg string, kv ...interface{}) {
	h := bloomfilter.NewHash([]byte(key))
	l.mu.Lock()
	seen := l.warnOnce.Contains(h)
	if !seen {
		l.warnOnce.Add(h)
	}
	l.mu.Unlock()
	if !seen {
		l.log(LevelWarn, msg, kv...)
	}
}

// Dump renders v via davecgh/go-spew for deep-debug logging, for
// inspecting a struct too large for a plain %+v.
func Dump(v interface{}) string {
	return spew.Sdump(v)
}

// Package-level convenience wrappers over Default, for call sites that
// want a bare log.Info/log.Debug without holding a *Logger.
// They call log directly so the captured caller frame is the call
// site, not the wrapper.
func Debug(msg string, kv ...interface{}) { Default.log(LevelDebug, msg, kv...) }
func Info(msg string, kv ...interface{})  { Default.log(LevelInfo, msg, kv...) }
func Warn(msg string, kv ...interface{})  { Default.log(LevelWarn, msg, kv...) }
func Error(msg string, kv ...interface{}) { Default.log(LevelError, msg, kv...) }
