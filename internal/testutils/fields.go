package testutils

// TestingT is the part of testing.T the helpers report through
type TestingT interface {
	Errorf(format string, args ...any)
}

// FieldsToMap turns alternating key/value log fields into a map. A dangling
// key or a non-string key is reported through t and skipped.
func FieldsToMap(t TestingT, fields []any) map[string]any {
	out := make(map[string]any, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			t.Errorf("Malformed fields slice: missing value for key at index %d", i)
			break
		}
		key, ok := fields[i].(string)
		if !ok {
			t.Errorf("Malformed fields slice: key at index %d is not a string, got %T", i, fields[i])
			continue
		}
		out[key] = fields[i+1]
	}
	return out
}

// Field returns the value logged under key, if any
func (e LogEntry) Field(key string) (any, bool) {
	for i := 0; i+1 < len(e.Fields); i += 2 {
		if k, ok := e.Fields[i].(string); ok && k == key {
			return e.Fields[i+1], true
		}
	}
	return nil, false
}
