package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"readerdesk/internal/infrastructure/errors"
	"readerdesk/internal/infrastructure/logging"
)

// Manager is the single owner of the configuration file. Every read goes to
// disk; every read-modify-write happens under one lock.
type Manager struct {
	mu     sync.Mutex
	path   string
	logger logging.Logger
	useEnv bool
}

// NewManager creates a manager for the file at path. Environment overrides
// are applied to values returned by Load.
func NewManager(path string, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Manager{path: path, logger: logger, useEnv: true}
}

// IgnoreEnvironment disables READER_* overrides
func (m *Manager) IgnoreEnvironment() *Manager {
	m.useEnv = false
	return m
}

// Path returns the configuration file path
func (m *Manager) Path() string {
	return m.path
}

// Load reads the configuration from disk. A missing file yields an empty
// configuration.
func (m *Manager) Load() (*ReaderConfig, error) {
	m.mu.Lock()
	cfg, err := m.read()
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.effective(cfg), nil
}

// Patch merges the set fields of patch into the stored configuration and
// persists the result.
func (m *Manager) Patch(patch *ReaderConfig) (*ReaderConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, err := m.read()
	if err != nil {
		return nil, err
	}
	cfg.Merge(patch)
	if err := cfg.Validate(); err != nil {
		return nil, errors.New("save_config", err, errors.ErrCodeValidation)
	}
	if err := m.write(cfg); err != nil {
		return nil, err
	}
	return m.effective(cfg), nil
}

// Update applies fn to the stored configuration and persists it when fn
// reports a change.
func (m *Manager) Update(fn func(cfg *ReaderConfig) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, err := m.read()
	if err != nil {
		return err
	}
	if !fn(cfg) {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return errors.New("update_config", err, errors.ErrCodeValidation)
	}
	return m.write(cfg)
}

// Save replaces the stored configuration with cfg
func (m *Manager) Save(cfg *ReaderConfig) error {
	if err := cfg.Validate(); err != nil {
		return errors.New("save_config", err, errors.ErrCodeValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(cfg)
}

func (m *Manager) effective(cfg *ReaderConfig) *ReaderConfig {
	if m.useEnv {
		cfg.LoadFromEnvironment()
	}
	return cfg
}

func (m *Manager) read() (*ReaderConfig, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return &ReaderConfig{}, nil
		}
		return nil, errors.NewWithContext("load_config", err, errors.Classify(err),
			map[string]string{"path": m.path})
	}

	cfg := &ReaderConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewWithContext("load_config",
			fmt.Errorf("parse config %s: %w", m.path, err),
			errors.ErrCodeConfig,
			map[string]string{"path": m.path})
	}
	return cfg, nil
}

func (m *Manager) write(cfg *ReaderConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.New("save_config", fmt.Errorf("encode config: %w", err), errors.ErrCodeInternal)
	}

	err = errors.RetryQuick(context.Background(), "save_config", func() error {
		return errors.Wrap("save_config", writeAtomic(m.path, data))
	})
	if err != nil {
		logging.LogError(m.logger, err, "save_config", map[string]interface{}{"path": m.path})
		return err
	}
	m.logger.Debug("Configuration saved", "path", m.path)
	return nil
}

// writeAtomic writes data to a temp file next to path and renames it over path
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".config-*.yml")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
