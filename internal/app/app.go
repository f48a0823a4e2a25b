package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"readerdesk/internal/config"
	"readerdesk/internal/infrastructure/errors"
	"readerdesk/internal/infrastructure/logging"
	"readerdesk/internal/java"
	"readerdesk/internal/paths"
	"readerdesk/internal/server"
	"readerdesk/internal/window"
)

const (
	// shutdownTimeout bounds stopping the server when the app quits
	shutdownTimeout = 10 * time.Second

	EventServerState = "server:state"
	EventServerLog   = "server:log"
)

// Emitter sends an event to the web UI
type Emitter func(ctx context.Context, name string, data ...interface{})

// Deps are the collaborators of App
type Deps struct {
	Config    *config.Manager
	Java      *java.Checker
	Server    *server.Supervisor
	Window    *window.Manager
	Logger    logging.Logger
	Emit      Emitter
	AutoStart bool
}

// App is the command surface bound to the web UI
type App struct {
	ctx       context.Context
	config    *config.Manager
	java      *java.Checker
	server    *server.Supervisor
	window    *window.Manager
	logger    logging.Logger
	emit      Emitter
	autoStart bool
}

// NewApp wires the production collaborators rooted at dirs
func NewApp(dirs paths.Dirs, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	cfg := config.NewManager(dirs.ConfigFile(), logger)
	checker := java.NewChecker(logger)
	supervisor := server.NewSupervisor(server.Options{
		Dirs:   dirs,
		Config: cfg,
		Java:   checker,
		Logger: logger,
	})
	win := window.NewManager(window.WailsRuntime{}, cfg, supervisor.Port, logger)

	return New(Deps{
		Config:    cfg,
		Java:      checker,
		Server:    supervisor,
		Window:    win,
		Logger:    logger,
		Emit:      wailsruntime.EventsEmit,
		AutoStart: true,
	})
}

// New creates an App from explicit collaborators
func New(deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = logging.NewDefaultLogger()
	}
	return &App{
		config:    deps.Config,
		java:      deps.Java,
		server:    deps.Server,
		window:    deps.Window,
		logger:    deps.Logger,
		emit:      deps.Emit,
		autoStart: deps.AutoStart,
	}
}

// Startup is called at application startup
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	a.server.OnLine(func(line server.LogLine) {
		a.emitEvent(EventServerLog, line)
	})
	a.server.OnStateChange(func(st server.Status) {
		a.emitEvent(EventServerState, st)
	})

	a.window.Place(ctx)
	a.window.StartTracking(ctx)

	if a.autoStart {
		go func() {
			if err := a.StartServer(); err != nil {
				a.logger.Warn("Server did not start with the application", "error", errors.UserMessage(err))
			}
		}()
	}

	a.logger.Info("Application started", "config", a.config.Path())
}

// DomReady is called after front-end resources have been loaded
func (a *App) DomReady(ctx context.Context) {
	a.window.Navigate(ctx)
}

// BeforeClose is called when the application is about to quit
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	return false
}

// Shutdown is called at application termination
func (a *App) Shutdown(ctx context.Context) {
	a.logger.Info("Starting application shutdown sequence")

	a.window.StopTracking()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := a.stopServer(shutdownCtx); err != nil {
		logging.LogError(a.logger, err, "shutdown", nil)
	}

	a.logger.Info("Application shutdown completed")
}

// stopServer stops the server, giving up when ctx ends
func (a *App) stopServer(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- a.server.Stop()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.New("shutdown", fmt.Errorf("stopping the server: %w", ctx.Err()), errors.ErrCodeTimeout)
	}
}

func (a *App) context() context.Context {
	if a.ctx != nil {
		return a.ctx
	}
	return context.Background()
}

func (a *App) emitEvent(name string, data interface{}) {
	if a.emit == nil || a.ctx == nil {
		return
	}
	a.emit(a.ctx, name, data)
}

// userError strips classification details before the error reaches the UI
func userError(err error) error {
	if err == nil {
		return nil
	}
	return stderrors.New(errors.UserMessage(err))
}

// PrintLog writes a message from the web UI to the application log
func (a *App) PrintLog(message string) {
	a.logger.Info("[WEB] " + message)
}

// GetConfig returns the stored configuration
func (a *App) GetConfig() (*config.ReaderConfig, error) {
	cfg, err := a.config.Load()
	if err != nil {
		logging.LogError(a.logger, err, "get_config", nil)
		return nil, userError(err)
	}
	return cfg, nil
}

// SaveConfig merges patch into the stored configuration. A nil patch
// rewrites the current configuration.
func (a *App) SaveConfig(patch *config.ReaderConfig) (bool, error) {
	if patch == nil {
		patch = &config.ReaderConfig{}
	}
	if _, err := a.config.Patch(patch); err != nil {
		return false, userError(err)
	}
	return true, nil
}

// CheckJava validates path, or discovers java on PATH when path is empty
func (a *App) CheckJava(path string) (string, error) {
	ctx := a.context()
	if path == "" {
		found, err := a.java.CheckInstalled(ctx)
		return found, userError(err)
	}
	if _, err := a.java.CheckVersion(ctx, path); err != nil {
		return "", userError(err)
	}
	return path, nil
}

// GetServerPort returns the port the server listens on
func (a *App) GetServerPort() int {
	return a.server.Port()
}

// IsServerRunning reports whether the server is ready
func (a *App) IsServerRunning() bool {
	return a.server.IsRunning()
}

// StartServer starts the server and points the window at it
func (a *App) StartServer() error {
	ctx := a.context()
	if err := a.server.Start(ctx); err != nil {
		return userError(err)
	}
	a.window.Refresh(ctx)
	return nil
}

// StopServer stops the server
func (a *App) StopServer() error {
	return userError(a.server.Stop())
}

// RestartServer restarts the server and points the window at it
func (a *App) RestartServer() error {
	ctx := a.context()
	if err := a.server.Restart(ctx); err != nil {
		return userError(err)
	}
	a.window.Refresh(ctx)
	return nil
}

// GetServerStatus returns the supervisor status
func (a *App) GetServerStatus() server.Status {
	return a.server.Status()
}

// GetServerLogs returns the recent server output
func (a *App) GetServerLogs() []server.LogLine {
	return a.server.Logs()
}
