package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger interface used by every component of the shell
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// DefaultLogger writes structured JSON lines
type DefaultLogger struct {
	out *log.Logger // nil means the standard logger
}

// NewDefaultLogger creates a logger writing through the standard log package
func NewDefaultLogger() Logger {
	return &DefaultLogger{}
}

// NewWriterLogger creates a logger writing JSON lines to w
func NewWriterLogger(w io.Writer) Logger {
	return &DefaultLogger{out: log.New(w, "", 0)}
}

// FileOptions controls the rotating log file
type FileOptions struct {
	Dir        string
	Name       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultFileOptions returns rotation settings for dir
func DefaultFileOptions(dir string) FileOptions {
	return FileOptions{
		Dir:        dir,
		Name:       "reader.log",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 14,
	}
}

// NewFileLogger creates a logger that writes to stderr and to a rotating file.
// The returned closer flushes and closes the file.
func NewFileLogger(opts FileOptions) (Logger, io.Closer, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir %s: %w", opts.Dir, err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, opts.Name),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	return NewWriterLogger(io.MultiWriter(os.Stderr, rotator)), rotator, nil
}

type entry struct {
	Timestamp string                              `json:"timestamp"`
	Level     string                              `json:"level"`
	Message   string                              `json:"message"`
	Fields    *orderedmap.OrderedMap[string, any] `json:"fields"`
}

// orderedFields keeps key/value pairs in the order they were logged. A
// non-string key is stringified and a trailing key without value is kept
// under "_dangling".
func orderedFields(fields []any) *orderedmap.OrderedMap[string, any] {
	out := orderedmap.New[string, any]()
	for i := 0; i < len(fields); i += 2 {
		if i+1 == len(fields) {
			out.Set("_dangling", fields[i])
			break
		}
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		out.Set(key, fields[i+1])
	}
	return out
}

func (l *DefaultLogger) write(level, msg string, fields []any) {
	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Message:   msg,
		Fields:    orderedFields(fields),
	}

	line, err := json.Marshal(e)
	if err != nil {
		// values json cannot encode are logged as text
		for pair := e.Fields.Oldest(); pair != nil; pair = pair.Next() {
			pair.Value = fmt.Sprint(pair.Value)
		}
		e.Fields.Set("_marshal_error", err.Error())
		line, _ = json.Marshal(e)
	}

	if l.out != nil {
		l.out.Println(string(line))
		return
	}
	log.Println(string(line))
}

func (l *DefaultLogger) Debug(msg string, fields ...interface{}) { l.write("DEBUG", msg, fields) }
func (l *DefaultLogger) Info(msg string, fields ...interface{})  { l.write("INFO", msg, fields) }
func (l *DefaultLogger) Warn(msg string, fields ...interface{})  { l.write("WARN", msg, fields) }
func (l *DefaultLogger) Error(msg string, fields ...interface{}) { l.write("ERROR", msg, fields) }

// ClassifiedError is the logging view of errors.AppError, declared here so
// logging does not import errors.
type ClassifiedError interface {
	Error() string
	GetCode() string
	IsRetryable() bool
	GetContext() map[string]string
	GetTimestamp() time.Time
}

func appendSorted[V any](fields []any, m map[string]V) []any {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		fields = append(fields, k, m[k])
	}
	return fields
}

// LogError logs err at ERROR with its classification, if it has one, and
// extra in key order.
func LogError(logger Logger, err error, operation string, extra map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	fields := []any{"operation", operation}
	msg := "Unexpected error: " + err.Error()

	var classified ClassifiedError
	if errors.As(err, &classified) {
		msg = "Operation failed: " + err.Error()
		fields = append(fields,
			"error_code", classified.GetCode(),
			"retryable", classified.IsRetryable(),
			"timestamp", classified.GetTimestamp(),
		)
		fields = appendSorted(fields, classified.GetContext())
	} else {
		fields = append(fields, "error_type", fmt.Sprintf("%T", err))
	}

	logger.Error(msg, appendSorted(fields, extra)...)
}

// LogOperation logs a completed operation and how long it took
func LogOperation(logger Logger, operation string, duration time.Duration, extra map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	fields := []any{"operation", operation, "duration_ms", duration.Milliseconds()}
	logger.Info("Operation completed: "+operation, appendSorted(fields, extra)...)
}
