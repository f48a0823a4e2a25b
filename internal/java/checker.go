// Package java finds a usable Java runtime and validates its version.
package java

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"readerdesk/internal/infrastructure/errors"
	"readerdesk/internal/infrastructure/logging"
	"readerdesk/internal/platform"
)

// DefaultTimeout bounds a single `java -version` run
const DefaultTimeout = 10 * time.Second

// RequirementMessage is shown when no usable runtime exists
const RequirementMessage = "Java 8 or later is required; install it or set javaPath in the settings"

// Runner executes path with args and returns its stderr
type Runner func(ctx context.Context, path string, args ...string) ([]byte, error)

// Checker validates Java executables
type Checker struct {
	lookPath func(file string) (string, error)
	run      Runner
	timeout  time.Duration
	logger   logging.Logger
}

// NewChecker creates a checker that runs real executables
func NewChecker(logger logging.Logger) *Checker {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Checker{
		lookPath: exec.LookPath,
		run:      runCommand,
		timeout:  DefaultTimeout,
		logger:   logger,
	}
}

// WithRunner replaces the process runner and PATH lookup, for tests
func (c *Checker) WithRunner(lookPath func(string) (string, error), run Runner) *Checker {
	if lookPath != nil {
		c.lookPath = lookPath
	}
	if run != nil {
		c.run = run
	}
	return c
}

// CheckInstalled looks up java on PATH and validates it
func (c *Checker) CheckInstalled(ctx context.Context) (string, error) {
	path, err := c.lookPath("java")
	if err != nil {
		c.logger.Warn("Java not found on PATH", "error", err.Error())
		return "", errors.New("check_java", stderrors.New(RequirementMessage), errors.ErrCodeJavaNotFound)
	}

	if _, err := c.CheckVersion(ctx, path); err != nil {
		return "", err
	}
	return path, nil
}

// CheckVersion runs `<path> -version` and validates the reported version
func (c *Checker) CheckVersion(ctx context.Context, path string) (Version, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Version{}, errors.New("check_java_version", stderrors.New(RequirementMessage), errors.ErrCodeJavaNotFound)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	output, err := c.run(runCtx, path, "-version")
	if err != nil {
		code := errors.ErrCodeJavaNotFound
		if runCtx.Err() != nil {
			code = errors.ErrCodeTimeout
		}
		return Version{}, errors.NewWithContext("check_java_version",
			fmt.Errorf("cannot run %s: %w", path, err), code,
			map[string]string{"path": path})
	}

	version, err := ParseVersionOutput(string(output))
	if err != nil {
		return Version{}, errors.NewWithContext("check_java_version", err, errors.ErrCodeJavaVersion,
			map[string]string{"path": path})
	}
	if !version.Supported() {
		return Version{}, errors.NewWithContext("check_java_version",
			fmt.Errorf("%w: found %s, %s", ErrVersionTooLow, version, RequirementMessage),
			errors.ErrCodeJavaVersion,
			map[string]string{"path": path})
	}

	c.logger.Debug("Java version validated", "path", path, "version", version.Raw)
	return version, nil
}

// Resolve prefers configured when it validates, otherwise falls back to
// discovery on PATH.
func (c *Checker) Resolve(ctx context.Context, configured string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		_, err := c.CheckVersion(ctx, configured)
		if err == nil {
			return configured, nil
		}
		c.logger.Warn("Configured Java is unusable, falling back to PATH",
			"path", configured, "error", errors.UserMessage(err))
	}
	return c.CheckInstalled(ctx)
}

func runCommand(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	platform.Configure(cmd)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, firstLine(msg))
		}
		return nil, err
	}
	return stderr.Bytes(), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
