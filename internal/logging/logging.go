// Package logging provides the structured logger used across the terminal service.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Fields carries structured key/value pairs attached to a log line.
type Fields map[string]interface{}

var (
	levelMu sync.RWMutex
	level   = new(slog.LevelVar)
	output  io.Writer = os.Stdout

	serviceName = "pos-terminal"
	hostname, _ = os.Hostname()
)

// SetLevel changes the minimum level for every logger. Unknown values fall back to info.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

// SetOutput redirects every logger created afterwards. Used by tests.
func SetOutput(w io.Writer) {
	levelMu.Lock()
	defer levelMu.Unlock()
	output = w
}

// SetServiceName sets the service attribute stamped on every line.
func SetServiceName(name string) {
	levelMu.Lock()
	defer levelMu.Unlock()
	serviceName = name
}

// LoggerV2 is a component-scoped structured logger.
type LoggerV2 struct {
	component string
	handler   *slog.Logger
}

// NewLoggerV2 creates a logger for the named component.
func NewLoggerV2(component string) *LoggerV2 {
	levelMu.RLock()
	w, svc := output, serviceName
	levelMu.RUnlock()

	handler := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})).With(
		slog.String("service", svc),
		slog.String("component", component),
		slog.String("hostname", hostname),
	)

	return &LoggerV2{component: component, handler: handler}
}

func (l *LoggerV2) Debug(msg string, fields ...Fields) {
	l.log(slog.LevelDebug, msg, fields)
}

func (l *LoggerV2) Info(msg string, fields ...Fields) {
	l.log(slog.LevelInfo, msg, fields)
}

func (l *LoggerV2) Warn(msg string, fields ...Fields) {
	l.log(slog.LevelWarn, msg, fields)
}

func (l *LoggerV2) Error(msg string, fields ...Fields) {
	l.log(slog.LevelError, msg, fields)
}

// Fatal logs at error level and exits the process.
func (l *LoggerV2) Fatal(msg string, fields ...Fields) {
	l.log(slog.LevelError, msg, fields)
	os.Exit(1)
}

func (l *LoggerV2) log(lvl slog.Level, msg string, fields []Fields) {
	if l == nil || l.handler == nil {
		return
	}
	attrs := make([]slog.Attr, 0, 8)
	for _, f := range fields {
		for k, v := range f {
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	l.handler.LogAttrs(context.Background(), lvl, msg, attrs...)
}

var defaultLogger = struct {
	once sync.Once
	l    *LoggerV2
}{}

func std() *LoggerV2 {
	defaultLogger.once.Do(func() {
		defaultLogger.l = NewLoggerV2("default")
	})
	return defaultLogger.l
}

// Info logs through the package-level logger.
func Info(msg string, fields ...Fields) {
	std().Info(msg, fields...)
}

// Infof logs a formatted line through the package-level logger.
func Infof(format string, args ...interface{}) {
	std().Info(fmt.Sprintf(format, args...))
}
