// Package applog is a thin shim over the standard log package. It mirrors
// the teacher's log.Printf("[sync] ...") tagging convention with structured
// key=value pairs instead of a free-text prefix.
package applog

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger writes tagged, structured lines to an underlying *log.Logger.
type Logger struct {
	tag    string
	std    *log.Logger
}

// New returns a Logger that writes to stderr, prefixed with tag (e.g.
// "store", "backfill", "project").
func New(tag string) *Logger {
	return &Logger{tag: tag, std: log.New(os.Stderr, "", log.LstdFlags)}
}

// With returns a child Logger sharing the same writer under a sub-tag, e.g.
// applog.New("backfill").With("artifacts") logs as "backfill.artifacts".
func (l *Logger) With(subtag string) *Logger {
	return &Logger{tag: l.tag + "." + subtag, std: l.std}
}

// Info logs msg with the given key=value fields.
func (l *Logger) Info(msg string, fields ...Field) {
	l.log("INFO", msg, fields)
}

// Error logs msg with the given key=value fields.
func (l *Logger) Error(msg string, fields ...Field) {
	l.log("ERROR", msg, fields)
}

// Warn logs msg with the given key=value fields.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log("WARN", msg, fields)
}

func (l *Logger) log(level, msg string, fields []Field) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s level=%s", l.tag, msg, level)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	l.std.Print(b.String())
}

// Field is one key=value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// F builds a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}
