package errors

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"
)

// Classify maps filesystem and process errors onto error codes
func Classify(err error) ErrorCode {
	if err == nil {
		return ErrCodeUnknown
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	case errors.Is(err, context.Canceled):
		return ErrCodeTimeout
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, exec.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrCodePermission
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "permission denied"),
		strings.Contains(errStr, "access is denied"):
		return ErrCodePermission
	case strings.Contains(errStr, "being used by another process"),
		strings.Contains(errStr, "resource busy"):
		return ErrCodeBusy
	case strings.Contains(errStr, "timeout"):
		return ErrCodeTimeout
	default:
		return ErrCodeUnknown
	}
}

// Wrap classifies err and wraps it with the operation name
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return New(op, err, Classify(err))
}
