package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"readerdesk/internal/testutils"
)

type stubClassified struct {
	code    string
	context map[string]string
}

func (s *stubClassified) Error() string                 { return "spawn failed" }
func (s *stubClassified) GetCode() string               { return s.code }
func (s *stubClassified) IsRetryable() bool             { return false }
func (s *stubClassified) GetContext() map[string]string { return s.context }
func (s *stubClassified) GetTimestamp() time.Time       { return time.Unix(0, 0) }

func decodeLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &out); err != nil {
		t.Fatalf("not a JSON line %q: %v", line, err)
	}
	return out
}

func TestWriterLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)

	tests := []struct {
		level  string
		log    func(string, ...interface{})
		fields []any
		want   map[string]any
	}{
		{"DEBUG", logger.Debug, []any{"key", "value"}, map[string]any{"key": "value"}},
		{"INFO", logger.Info, []any{"port", 8080}, map[string]any{"port": float64(8080)}},
		{"WARN", logger.Warn, nil, map[string]any{}},
		{"ERROR", logger.Error, []any{"error", "boom"}, map[string]any{"error": "boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.log("hello", tt.fields...)

			got := decodeLine(t, buf.String())
			if got["level"] != tt.level || got["message"] != "hello" {
				t.Errorf("level=%v message=%v", got["level"], got["message"])
			}
			if _, err := time.Parse(time.RFC3339, fmt.Sprint(got["timestamp"])); err != nil {
				t.Errorf("bad timestamp %v", got["timestamp"])
			}
			fields, _ := got["fields"].(map[string]any)
			if len(fields) != len(tt.want) {
				t.Errorf("fields = %v, want %v", fields, tt.want)
			}
			for k, v := range tt.want {
				if fields[k] != v {
					t.Errorf("field %s = %v, want %v", k, fields[k], v)
				}
			}
		})
	}
}

func TestFieldsKeepLoggedOrder(t *testing.T) {
	var buf bytes.Buffer
	NewWriterLogger(&buf).Info("ordered", "zeta", 1, "alpha", 2, "mid", 3)

	line := buf.String()
	z, a, m := strings.Index(line, `"zeta"`), strings.Index(line, `"alpha"`), strings.Index(line, `"mid"`)
	if z < 0 || !(z < a && a < m) {
		t.Errorf("fields not in logged order: %s", line)
	}
}

func TestMalformedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)

	logger.Info("odd", 7, "seven", "trailing")
	fields := decodeLine(t, buf.String())["fields"].(map[string]any)
	if fields["7"] != "seven" {
		t.Errorf("non-string key not stringified: %v", fields)
	}
	if fields["_dangling"] != "trailing" {
		t.Errorf("dangling key lost: %v", fields)
	}

	buf.Reset()
	logger.Info("chan", "ch", make(chan int))
	fields = decodeLine(t, buf.String())["fields"].(map[string]any)
	if _, ok := fields["_marshal_error"]; !ok {
		t.Errorf("expected marshal error marker: %v", fields)
	}
	if s, ok := fields["ch"].(string); !ok || !strings.HasPrefix(s, "0x") {
		t.Errorf("unencodable value should be stringified, got %v", fields["ch"])
	}
}

func TestDefaultLoggerUsesStandardLog(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})

	LogError(nil, errors.New("disk full"), "save", nil)

	got := decodeLine(t, buf.String())
	if got["level"] != "ERROR" || got["message"] != "Unexpected error: disk full" {
		t.Errorf("unexpected entry %v", got)
	}
}

func TestLogError(t *testing.T) {
	t.Run("classified", func(t *testing.T) {
		rec := &testutils.RecordingLogger{}
		err := &stubClassified{code: "SPAWN", context: map[string]string{"path": "/usr/bin/java"}}

		LogError(rec, fmt.Errorf("start: %w", err), "start_server", map[string]interface{}{"port": 8080})

		entries := rec.Entries()
		if len(entries) != 1 || entries[0].Level != "ERROR" {
			t.Fatalf("entries = %+v", entries)
		}
		if entries[0].Msg != "Operation failed: start: spawn failed" {
			t.Errorf("msg = %q", entries[0].Msg)
		}
		fields := testutils.FieldsToMap(t, entries[0].Fields)
		for k, v := range map[string]any{
			"operation":  "start_server",
			"error_code": "SPAWN",
			"retryable":  false,
			"path":       "/usr/bin/java",
			"port":       8080,
		} {
			if fields[k] != v {
				t.Errorf("field %s = %v, want %v", k, fields[k], v)
			}
		}
	})

	t.Run("plain", func(t *testing.T) {
		rec := &testutils.RecordingLogger{}
		LogError(rec, errors.New("boom"), "navigate", map[string]interface{}{"b": 2, "a": 1})

		e := rec.Entries()[0]
		if e.Msg != "Unexpected error: boom" {
			t.Errorf("msg = %q", e.Msg)
		}
		want := []any{"operation", "navigate", "error_type", "*errors.errorString", "a", 1, "b", 2}
		if fmt.Sprint(e.Fields) != fmt.Sprint(want) {
			t.Errorf("fields = %v, want %v", e.Fields, want)
		}
	})
}

func TestLogOperation(t *testing.T) {
	rec := &testutils.RecordingLogger{}
	LogOperation(rec, "start_server", 1500*time.Millisecond, map[string]interface{}{"port": 8080})

	e := rec.Entries()[0]
	if e.Level != "INFO" || e.Msg != "Operation completed: start_server" {
		t.Errorf("entry = %+v", e)
	}
	if d, _ := e.Field("duration_ms"); d != int64(1500) {
		t.Errorf("duration_ms = %v", d)
	}
	if p, _ := e.Field("port"); p != 8080 {
		t.Errorf("port = %v", p)
	}
}

func TestNewFileLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, closer, err := NewFileLogger(DefaultFileOptions(dir))
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	logger.Info("written to file", "k", "v")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "reader.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if got := decodeLine(t, string(data)); got["message"] != "written to file" {
		t.Errorf("file entry = %v", got)
	}
}
