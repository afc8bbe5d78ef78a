// Package logx is the engine's structured leveled logger. Call sites pass a
// short message plus alternating key/value pairs, mirroring the idiom the
// rest of this codebase's lineage uses for its own logging
// (log.Info("msg", "k", v, ...)); this package just fills in a concrete,
// colorized implementation of that interface.
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level orders the five severities from most to least verbose.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "?????"
	}
}

var levelColor = map[Level]*color.Color{
	LevelTrace: color.New(color.FgHiBlack),
	LevelDebug: color.New(color.FgCyan),
	LevelInfo:  color.New(color.FgGreen),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

// Logger writes leveled, key/value-annotated lines to an io.Writer, using
// color when that writer is a terminal.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	color  bool
	ctx    []interface{}
	prefix string
}

// New builds a Logger over w. Color is enabled automatically when w is a
// terminal file descriptor (via go-isatty), and an *os.File is wrapped with
// go-colorable so ANSI sequences still render on Windows.
func New(w io.Writer, level Level) *Logger {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		w = colorable.NewColorable(f)
	}
	return &Logger{out: w, level: level, color: useColor}
}

// Default returns a Logger over stderr at LevelInfo, the engine's standard
// destination for operational logging.
func Default() *Logger { return New(os.Stderr, LevelInfo) }

// With returns a child Logger that prepends ctx (alternating key/value
// pairs) to every line it emits, without mutating the receiver.
func (l *Logger) With(ctx ...interface{}) *Logger {
	child := &Logger{out: l.out, level: l.level, color: l.color, prefix: l.prefix}
	child.ctx = append(append([]interface{}{}, l.ctx...), ctx...)
	return child
}

// SetLevel changes the minimum level this Logger emits.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) log(level Level, msg string, kv []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')

	tag := level.String()
	if l.color {
		tag = levelColor[level].Sprint(tag)
	}
	b.WriteString(tag)
	b.WriteByte(' ')
	b.WriteString(msg)

	writeFields(&b, l.ctx)
	writeFields(&b, kv)
	b.WriteByte('\n')

	io.WriteString(l.out, b.String())
}

// writeFields appends " k=v" for every key/value pair in kv, tolerating a
// trailing unpaired key by rendering it with a "MISSING" value rather than
// panicking mid-log-line.
func writeFields(b *strings.Builder, kv []interface{}) {
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		var val interface{} = "MISSING"
		if i+1 < len(kv) {
			val = kv[i+1]
		}
		fmt.Fprintf(b, " %s=%v", key, val)
	}
}

func (l *Logger) Trace(msg string, kv ...interface{}) { l.log(LevelTrace, msg, kv) }
func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(LevelDebug, msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(LevelInfo, msg, kv) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(LevelWarn, msg, kv) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(LevelError, msg, kv) }

var std = Default()

// SetDefault replaces the package-level Logger the Trace/Debug/Info/Warn/
// Error package functions delegate to.
func SetDefault(l *Logger) { std = l }

func Trace(msg string, kv ...interface{}) { std.Trace(msg, kv...) }
func Debug(msg string, kv ...interface{}) { std.Debug(msg, kv...) }
func Info(msg string, kv ...interface{})  { std.Info(msg, kv...) }
func Warn(msg string, kv ...interface{})  { std.Warn(msg, kv...) }
func Error(msg string, kv ...interface{}) { std.Error(msg, kv...) }

// ParseLevel converts a level name (case-insensitive) to a Level, for
// reading log levels out of configuration or CLI flags.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("logx: unknown level %q", s)
	}
}
