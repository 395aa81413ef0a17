package observe

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

// LogLevel represents a logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

// ParseLogLevel parses a string log level. Unknown names fall back to info.
func ParseLogLevel(s string) LogLevel {
	if i := slices.Index(levelNames[:], s); i >= 0 {
		return LogLevel(i)
	}
	return LevelInfo
}

func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelError {
		return levelNames[LevelInfo]
	}
	return levelNames[l]
}

// sensitiveKeys are redacted wherever they appear in a field key.
var sensitiveKeys = []string{"password", "secret", "token", "api_key", "apikey", "credential", "authorization"}

const redacted = "[REDACTED]"

// redact masks the value of a sensitive field. Source URLs keep their host
// and path but lose any password in their user info.
func redact(f Field) any {
	key := strings.ToLower(f.Key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return redacted
		}
	}
	switch v := f.Value.(type) {
	case *url.URL:
		return v.Redacted()
	case string:
		if strings.Contains(v, "@") && strings.Contains(v, "://") {
			if u, err := url.Parse(v); err == nil && u.User != nil {
				return u.Redacted()
			}
		}
	}
	return f.Value
}

// structuredLogger writes one JSON object per line.
type structuredLogger struct {
	level  LogLevel
	writer io.Writer
	mu     *sync.Mutex
	base   []Field
}

// NewLogger creates a structured logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a structured logger with a custom writer.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return &structuredLogger{level: ParseLogLevel(level), writer: w, mu: &sync.Mutex{}}
}

// WithFetch returns a logger tagged with the store, path and selection of
// a fetch. Derived loggers share the writer lock of their parent.
func (l *structuredLogger) WithFetch(meta FetchMeta) Logger {
	base := slices.Clip(l.base)
	base = append(base, Field{Key: "h5.store", Value: meta.Store}, Field{Key: "h5.path", Value: meta.Path})
	if meta.Selection != "" {
		base = append(base, Field{Key: "h5.selection", Value: meta.Selection})
	}
	if meta.Source != "" {
		base = append(base, Field{Key: "h5.source", Value: meta.Source})
	}
	return &structuredLogger{level: l.level, writer: l.writer, mu: l.mu, base: base}
}

func (l *structuredLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelDebug, msg, fields)
}

func (l *structuredLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelInfo, msg, fields)
}

func (l *structuredLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelWarn, msg, fields)
}

func (l *structuredLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelError, msg, fields)
}

func (l *structuredLogger) log(_ context.Context, level LogLevel, msg string, fields []Field) {
	if level < l.level {
		return
	}

	entry := make(map[string]any, len(l.base)+len(fields)+3)
	for _, f := range l.base {
		entry[f.Key] = f.Value
	}
	for _, f := range fields {
		entry[f.Key] = redact(f)
	}
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.writer.Write(append(data, '\n'))
}

var _ Logger = (*structuredLogger)(nil)
