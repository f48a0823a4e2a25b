// Package window builds the main window URL and keeps its geometry.
package window

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"readerdesk/internal/config"
	"readerdesk/internal/infrastructure/logging"
)

// ConfigStore is the configuration owner shared with the rest of the shell
type ConfigStore interface {
	Load() (*config.ReaderConfig, error)
	Update(fn func(cfg *config.ReaderConfig) bool) error
}

// Manager drives the main window
type Manager struct {
	rt     Runtime
	store  ConfigStore
	port   func() int
	logger logging.Logger
	devURL func() string

	mu      sync.Mutex
	lastURL string
	tracker *Tracker
}

// NewManager creates a window manager. port reports the server port to embed
// in the URL.
func NewManager(rt Runtime, store ConfigStore, port func() int, logger logging.Logger) *Manager {
	if rt == nil {
		rt = WailsRuntime{}
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Manager{
		rt:     rt,
		store:  store,
		port:   port,
		logger: logger,
		devURL: devServerURL,
	}
}

// URL computes the load URL from the current configuration
func (m *Manager) URL() string {
	cfg, err := m.store.Load()
	if err != nil {
		logging.LogError(m.logger, err, "build_window_url", nil)
		cfg = &config.ReaderConfig{}
	}

	opts := URLOptions{
		Port:      m.port(),
		Debug:     cfg.DebugEnabled(),
		DevServer: m.devURL(),
	}
	if cfg.WindowURL != nil {
		opts.Override = *cfg.WindowURL
	}
	return BuildURL(opts, m.logger)
}

// Place applies the remembered position, or centers the window
func (m *Manager) Place(ctx context.Context) {
	cfg, err := m.store.Load()
	if err != nil {
		logging.LogError(m.logger, err, "place_window", nil)
		m.rt.WindowCenter(ctx)
		return
	}

	if w, h, ok := InitialSize(cfg); ok {
		m.rt.WindowSetSize(ctx, w, h)
	}
	if x, y, ok := initialPosition(cfg); ok {
		m.logger.Debug("Restoring window position", "x", x, "y", y)
		m.rt.WindowSetPosition(ctx, x, y)
		return
	}
	m.rt.WindowCenter(ctx)
}

// Navigate loads the window URL unless the page is already showing it.
// Called on every DOM load; the load caused by our own navigation is a no-op.
func (m *Manager) Navigate(ctx context.Context) {
	target := m.URL()

	m.mu.Lock()
	if target == m.lastURL {
		m.mu.Unlock()
		return
	}
	m.lastURL = target
	m.mu.Unlock()

	m.load(ctx, target)
}

// Refresh re-navigates when the URL inputs (port, debug, override) changed
func (m *Manager) Refresh(ctx context.Context) bool {
	target := m.URL()

	m.mu.Lock()
	changed := m.lastURL != "" && target != m.lastURL
	if changed {
		m.lastURL = target
	}
	m.mu.Unlock()

	if changed {
		m.load(ctx, target)
	}
	return changed
}

func (m *Manager) load(ctx context.Context, target string) {
	quoted, err := jsString(target)
	if err != nil {
		m.logger.Error("Cannot encode window URL", "url", target, "error", err.Error())
		return
	}
	m.logger.Info("Loading window URL", "url", target)
	m.rt.WindowExecJS(ctx, "window.location.replace("+quoted+")")
}

// jsString quotes s as a JavaScript string literal
func jsString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// StartTracking begins persisting geometry changes
func (m *Manager) StartTracking(ctx context.Context) {
	m.mu.Lock()
	if m.tracker == nil {
		m.tracker = NewTracker(m.rt, DefaultPollInterval, DefaultQuietPeriod, m.OnResized, m.OnMoved)
	}
	t := m.tracker
	m.mu.Unlock()
	t.Start(ctx)
}

// StopTracking stops polling and flushes pending geometry
func (m *Manager) StopTracking() {
	m.mu.Lock()
	t := m.tracker
	m.mu.Unlock()
	if t != nil {
		t.Stop()
	}
}

// OnResized stores the size when rememberSize is on
func (m *Manager) OnResized(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	err := m.store.Update(func(cfg *config.ReaderConfig) bool {
		if !cfg.RememberSizeEnabled() {
			return false
		}
		cfg.Width = config.Ptr(float64(width))
		cfg.Height = config.Ptr(float64(height))
		return true
	})
	if err != nil {
		logging.LogError(m.logger, err, "save_window_size", map[string]interface{}{"width": width, "height": height})
		return
	}
	m.logger.Debug("Window resized", "width", width, "height", height)
}

// OnMoved stores the position when rememberPosition is on
func (m *Manager) OnMoved(x, y int) {
	err := m.store.Update(func(cfg *config.ReaderConfig) bool {
		if !cfg.RememberPositionEnabled() {
			return false
		}
		cfg.PositionX = config.Ptr(float64(x))
		cfg.PositionY = config.Ptr(float64(y))
		return true
	})
	if err != nil {
		logging.LogError(m.logger, err, "save_window_position", map[string]interface{}{"x": x, "y": y})
		return
	}
	m.logger.Debug("Window moved", "x", x, "y", y)
}
