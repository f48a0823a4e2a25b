package errors

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"time"
)

// ErrorCode represents the class of a shell error
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeNotFound
	ErrCodeJavaNotFound
	ErrCodeJavaVersion
	ErrCodeSpawn
	ErrCodeKill
	ErrCodeReadiness
	ErrCodeTimeout
	ErrCodeAlreadyRunning
	ErrCodeConfig
	ErrCodeValidation
	ErrCodePermission
	ErrCodeBusy
	ErrCodeInternal
)

var codeNames = [...]string{
	ErrCodeUnknown:        "UNKNOWN",
	ErrCodeNotFound:       "NOT_FOUND",
	ErrCodeJavaNotFound:   "JAVA_NOT_FOUND",
	ErrCodeJavaVersion:    "JAVA_VERSION",
	ErrCodeSpawn:          "SPAWN",
	ErrCodeKill:           "KILL",
	ErrCodeReadiness:      "READINESS",
	ErrCodeTimeout:        "TIMEOUT",
	ErrCodeAlreadyRunning: "ALREADY_RUNNING",
	ErrCodeConfig:         "CONFIG",
	ErrCodeValidation:     "VALIDATION",
	ErrCodePermission:     "PERMISSION",
	ErrCodeBusy:           "BUSY",
	ErrCodeInternal:       "INTERNAL",
}

func (e ErrorCode) String() string {
	if e < 0 || int(e) >= len(codeNames) {
		return codeNames[ErrCodeUnknown]
	}
	return codeNames[e]
}

// AppError is a classified error carrying the failing operation and context
type AppError struct {
	Op        string
	Err       error
	Code      ErrorCode
	Retryable bool
	Context   map[string]string
	Timestamp time.Time
}

// Error renders the underlying message followed by a bracketed
// "op=.. code=.. key=value" suffix with context keys sorted.
func (e *AppError) Error() string {
	if e == nil {
		return "app error"
	}

	var b strings.Builder
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString("app error")
	}

	var tags []string
	if e.Op != "" {
		tags = append(tags, "op="+e.Op)
	}
	if e.Code != ErrCodeUnknown {
		tags = append(tags, "code="+e.Code.String())
	}
	if e.Retryable {
		tags = append(tags, "retryable=true")
	}
	for _, k := range slices.Sorted(maps.Keys(e.Context)) {
		tags = append(tags, k+"="+e.Context[k])
	}
	if len(tags) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(tags, " "))
		b.WriteString("]")
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *AppError by code, anything else through the wrapped error
func (e *AppError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*AppError); ok {
		return e.Code == t.Code
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

func (e *AppError) IsRetryable() bool { return e != nil && e.Retryable }

// GetCode, GetContext and GetTimestamp satisfy logging.ClassifiedError

func (e *AppError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

func (e *AppError) GetContext() map[string]string {
	if e == nil || e.Context == nil {
		return map[string]string{}
	}
	return e.Context
}

func (e *AppError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// New creates a new classified error
func New(op string, err error, code ErrorCode) *AppError {
	return &AppError{
		Op:        op,
		Err:       err,
		Code:      code,
		Retryable: retryableCode(code, err),
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewWithContext creates a new classified error with additional context
func NewWithContext(op string, err error, code ErrorCode, context map[string]string) *AppError {
	appErr := New(op, err, code)
	maps.Copy(appErr.Context, context)
	return appErr
}

var transientMarkers = []string{"temporary", "busy", "being used by another process"}

// retryableCode reports whether errors of code are worth retrying. Unknown
// errors are retried only when their message looks transient.
func retryableCode(code ErrorCode, err error) bool {
	switch code {
	case ErrCodeBusy, ErrCodeTimeout:
		return true
	case ErrCodeUnknown:
		if err == nil {
			return false
		}
		msg := strings.ToLower(err.Error())
		return slices.ContainsFunc(transientMarkers, func(m string) bool {
			return strings.Contains(msg, m)
		})
	}
	return false
}

// CodeOf returns the classification of err, or ErrCodeUnknown
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeUnknown
}

// UserMessage renders err for the UI: the underlying message without the
// operation and context decoration.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Err != nil {
		return appErr.Err.Error()
	}
	return err.Error()
}

// Predicates over CodeOf

func IsNotFound(err error) bool       { return CodeOf(err) == ErrCodeNotFound }
func IsJavaNotFound(err error) bool   { return CodeOf(err) == ErrCodeJavaNotFound }
func IsJavaVersion(err error) bool    { return CodeOf(err) == ErrCodeJavaVersion }
func IsSpawn(err error) bool          { return CodeOf(err) == ErrCodeSpawn }
func IsKill(err error) bool           { return CodeOf(err) == ErrCodeKill }
func IsReadiness(err error) bool      { return CodeOf(err) == ErrCodeReadiness }
func IsTimeout(err error) bool        { return CodeOf(err) == ErrCodeTimeout }
func IsAlreadyRunning(err error) bool { return CodeOf(err) == ErrCodeAlreadyRunning }
func IsValidation(err error) bool     { return CodeOf(err) == ErrCodeValidation }
func IsPermission(err error) bool     { return CodeOf(err) == ErrCodePermission }
func IsBusy(err error) bool           { return CodeOf(err) == ErrCodeBusy }

// IsRetryable reports whether err wraps a retryable *AppError
func IsRetryable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Retryable
}
