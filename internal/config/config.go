// Package config owns the persisted reader configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	// DefaultServerPort is used when no port is configured
	DefaultServerPort = 8080

	EnvJavaPath   = "READER_JAVA_PATH"
	EnvServerPort = "READER_SERVER_PORT"
	EnvDebug      = "READER_DEBUG"
	EnvWindowURL  = "READER_WINDOW_URL"
)

// ReaderConfig is the persisted user configuration. Every field is optional;
// nil means "not set".
type ReaderConfig struct {
	// Server
	JavaPath     *string         `json:"javaPath,omitempty" yaml:"javaPath,omitempty"`
	ServerPort   *int            `json:"serverPort,omitempty" yaml:"serverPort,omitempty"`
	ServerConfig *ServerSettings `json:"serverConfig,omitempty" yaml:"serverConfig,omitempty"`

	// Window geometry
	SetWindowSize     *bool    `json:"setWindowSize,omitempty" yaml:"setWindowSize,omitempty"`
	Width             *float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height            *float64 `json:"height,omitempty" yaml:"height,omitempty"`
	SetWindowPosition *bool    `json:"setWindowPosition,omitempty" yaml:"setWindowPosition,omitempty"`
	PositionX         *float64 `json:"positionX,omitempty" yaml:"positionX,omitempty"`
	PositionY         *float64 `json:"positionY,omitempty" yaml:"positionY,omitempty"`
	RememberSize      *bool    `json:"rememberSize,omitempty" yaml:"rememberSize,omitempty"`
	RememberPosition  *bool    `json:"rememberPosition,omitempty" yaml:"rememberPosition,omitempty"`

	// Web UI
	Debug     *bool   `json:"debug,omitempty" yaml:"debug,omitempty"`
	WindowURL *string `json:"windowUrl,omitempty" yaml:"windowUrl,omitempty"`
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func isTrue(b *bool) bool {
	return b != nil && *b
}

// ServerPortOrDefault returns the configured port, or DefaultServerPort
func (c *ReaderConfig) ServerPortOrDefault() int {
	if c == nil || c.ServerPort == nil {
		return DefaultServerPort
	}
	return *c.ServerPort
}

// DebugEnabled reports whether the web UI debug flag is on
func (c *ReaderConfig) DebugEnabled() bool {
	return c != nil && isTrue(c.Debug)
}

// RememberSizeEnabled reports whether resizes should be persisted
func (c *ReaderConfig) RememberSizeEnabled() bool {
	return c != nil && isTrue(c.RememberSize)
}

// RememberPositionEnabled reports whether moves should be persisted
func (c *ReaderConfig) RememberPositionEnabled() bool {
	return c != nil && isTrue(c.RememberPosition)
}

// ConfiguredJavaPath returns the trimmed java path, or ""
func (c *ReaderConfig) ConfiguredJavaPath() string {
	if c == nil || c.JavaPath == nil {
		return ""
	}
	return strings.TrimSpace(*c.JavaPath)
}

// Merge copies every field that is set in patch into c
func (c *ReaderConfig) Merge(patch *ReaderConfig) {
	if patch == nil {
		return
	}
	if patch.JavaPath != nil {
		c.JavaPath = clonePtr(patch.JavaPath)
	}
	if patch.ServerPort != nil {
		c.ServerPort = clonePtr(patch.ServerPort)
	}
	if patch.ServerConfig != nil {
		c.ServerConfig = patch.ServerConfig.Clone()
	}
	if patch.SetWindowSize != nil {
		c.SetWindowSize = clonePtr(patch.SetWindowSize)
	}
	if patch.Width != nil {
		c.Width = clonePtr(patch.Width)
	}
	if patch.Height != nil {
		c.Height = clonePtr(patch.Height)
	}
	if patch.SetWindowPosition != nil {
		c.SetWindowPosition = clonePtr(patch.SetWindowPosition)
	}
	if patch.PositionX != nil {
		c.PositionX = clonePtr(patch.PositionX)
	}
	if patch.PositionY != nil {
		c.PositionY = clonePtr(patch.PositionY)
	}
	if patch.RememberSize != nil {
		c.RememberSize = clonePtr(patch.RememberSize)
	}
	if patch.RememberPosition != nil {
		c.RememberPosition = clonePtr(patch.RememberPosition)
	}
	if patch.Debug != nil {
		c.Debug = clonePtr(patch.Debug)
	}
	if patch.WindowURL != nil {
		c.WindowURL = clonePtr(patch.WindowURL)
	}
}

// Clone creates a deep copy of the configuration
func (c *ReaderConfig) Clone() *ReaderConfig {
	if c == nil {
		return &ReaderConfig{}
	}
	out := &ReaderConfig{}
	out.Merge(c)
	return out
}

// Validate checks the fields that have hard constraints
func (c *ReaderConfig) Validate() error {
	if c.ServerPort != nil && (*c.ServerPort < 1 || *c.ServerPort > 65535) {
		return fmt.Errorf("serverPort must be between 1 and 65535, got %d", *c.ServerPort)
	}
	if c.Width != nil && *c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %v", *c.Width)
	}
	if c.Height != nil && *c.Height <= 0 {
		return fmt.Errorf("height must be positive, got %v", *c.Height)
	}
	return nil
}

// parseBoolEnv reads an environment variable and parses it as a boolean.
// The second result reports whether the variable held a recognised value.
func parseBoolEnv(key string) (bool, bool) {
	value := os.Getenv(key)
	if value == "" {
		return false, false
	}

	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed, true
	}

	switch strings.ToLower(value) {
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

// LoadFromEnvironment overlays READER_* environment variables. Invalid
// values are ignored.
func (c *ReaderConfig) LoadFromEnvironment() {
	if javaPath := os.Getenv(EnvJavaPath); javaPath != "" {
		c.JavaPath = Ptr(javaPath)
	}

	if port := os.Getenv(EnvServerPort); port != "" {
		if val, err := strconv.Atoi(port); err == nil && val > 0 && val <= 65535 {
			c.ServerPort = Ptr(val)
		}
	}

	if debug, present := parseBoolEnv(EnvDebug); present {
		c.Debug = Ptr(debug)
	}

	if windowURL := os.Getenv(EnvWindowURL); windowURL != "" {
		c.WindowURL = Ptr(windowURL)
	}
}
