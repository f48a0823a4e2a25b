// Package server supervises the bundled Java reader server.
package server

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"readerdesk/internal/config"
	"readerdesk/internal/infrastructure/errors"
	"readerdesk/internal/infrastructure/logging"
	"readerdesk/internal/paths"
)

const (
	// ReadinessMarker appears in the server output once it accepts connections
	ReadinessMarker = "ReaderApplication Started"

	DefaultReadyTimeout = 30 * time.Second
	DefaultStopTimeout  = 5 * time.Second

	maxLineBytes = 1024 * 1024
)

// ConfigSource provides the current configuration
type ConfigSource interface {
	Load() (*config.ReaderConfig, error)
}

// JavaResolver picks the java executable to launch
type JavaResolver interface {
	Resolve(ctx context.Context, configured string) (string, error)
}

// Options configures a Supervisor
type Options struct {
	Dirs         paths.Dirs
	Config       ConfigSource
	Java         JavaResolver
	Launcher     Launcher
	Logger       logging.Logger
	ReadyTimeout time.Duration
	StopTimeout  time.Duration
	LogLines     int
}

// Supervisor owns the single server process
type Supervisor struct {
	dirs         paths.Dirs
	cfg          ConfigSource
	java         JavaResolver
	launcher     Launcher
	logger       logging.Logger
	readyTimeout time.Duration
	stopTimeout  time.Duration
	logs         *LogBuffer
	memory       func(pid int) (float64, error)

	mu      sync.Mutex
	state   State
	current *run
	onLine  func(LogLine)
	onState func(Status)

	running     atomic.Bool
	startFailed atomic.Bool
}

// run is one spawned process lifecycle
type run struct {
	id        string
	proc      Process
	port      int
	startedAt time.Time

	readyOnce  sync.Once
	ready      chan struct{}
	outputDone chan struct{}
	done       chan struct{}
	exitErr    error
}

func (r *run) markReady() bool {
	first := false
	r.readyOnce.Do(func() {
		close(r.ready)
		first = true
	})
	return first
}

func (r *run) isReady() bool {
	select {
	case <-r.ready:
		return true
	default:
		return false
	}
}

// NewSupervisor creates an idle supervisor
func NewSupervisor(opts Options) *Supervisor {
	if opts.Logger == nil {
		opts.Logger = logging.NewDefaultLogger()
	}
	if opts.Launcher == nil {
		opts.Launcher = NewExecLauncher()
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	return &Supervisor{
		dirs:         opts.Dirs,
		cfg:          opts.Config,
		java:         opts.Java,
		launcher:     opts.Launcher,
		logger:       opts.Logger,
		readyTimeout: opts.ReadyTimeout,
		stopTimeout:  opts.StopTimeout,
		logs:         NewLogBuffer(opts.LogLines),
		memory:       processMemoryMB,
		state:        StateIdle,
	}
}

// OnLine registers a listener for every server output line
func (s *Supervisor) OnLine(fn func(LogLine)) {
	s.mu.Lock()
	s.onLine = fn
	s.mu.Unlock()
}

// OnStateChange registers a listener for lifecycle changes
func (s *Supervisor) OnStateChange(fn func(Status)) {
	s.mu.Lock()
	s.onState = fn
	s.mu.Unlock()
}

// Start launches the server and blocks until it is ready or has failed
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.current != nil || s.state == StateStarting {
		s.mu.Unlock()
		return errors.New("start_server", stderrors.New("the server is already running"), errors.ErrCodeAlreadyRunning)
	}
	s.state = StateStarting
	s.mu.Unlock()
	s.notifyState()

	start := time.Now()
	r, err := s.spawn(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		s.notifyState()
		logging.LogError(s.logger, err, "start_server", nil)
		return err
	}

	if err := s.waitFor(ctx, r); err != nil {
		return err
	}
	logging.LogOperation(s.logger, "start_server", time.Since(start), map[string]interface{}{
		"run_id": r.id,
		"port":   r.port,
	})
	return nil
}

func (s *Supervisor) spawn(ctx context.Context) (*run, error) {
	cfg, err := s.cfg.Load()
	if err != nil {
		return nil, err
	}

	javaPath, err := s.java.Resolve(ctx, cfg.ConfiguredJavaPath())
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(s.dirs.Jar); err != nil {
		return nil, errors.NewWithContext("start_server",
			fmt.Errorf("server jar not found: %s", s.dirs.Jar),
			errors.ErrCodeNotFound,
			map[string]string{"jar": s.dirs.Jar})
	}
	if err := os.MkdirAll(s.dirs.Home, 0o755); err != nil {
		return nil, errors.Wrap("start_server", fmt.Errorf("create work dir: %w", err))
	}

	port := cfg.ServerPortOrDefault()
	args := PrepareArgs(s.dirs.Jar, cfg, 0, s.dirs.Home, s.logger)

	proc, err := s.launcher.Launch(ctx, LaunchSpec{Java: javaPath, Args: args, Dir: s.dirs.Home})
	if err != nil {
		return nil, errors.NewWithContext("start_server",
			fmt.Errorf("failed to launch %s: %w", javaPath, err),
			errors.ErrCodeSpawn,
			map[string]string{"java": javaPath})
	}

	r := &run{
		id:         uuid.New().String(),
		proc:       proc,
		port:       port,
		startedAt:  time.Now(),
		ready:      make(chan struct{}),
		outputDone: make(chan struct{}),
		done:       make(chan struct{}),
	}

	s.mu.Lock()
	s.current = r
	s.running.Store(false)
	s.startFailed.Store(false)
	s.mu.Unlock()

	s.logger.Info("Server process started",
		"run_id", r.id, "pid", proc.Pid(), "java", javaPath, "port", port)

	go s.consume(r)
	go s.watch(r)
	return r, nil
}

// consume reads the output of r line by line until EOF. Lines longer than
// maxLineBytes are cut; the rest of the line is read and dropped.
func (s *Supervisor) consume(r *run) {
	defer close(r.outputDone)

	out := r.proc.Output()
	reader := bufio.NewReaderSize(out, 64*1024)
	var line []byte
	truncated := false
	for {
		chunk, more, err := reader.ReadLine()
		if err != nil {
			if len(line) > 0 {
				s.handleLine(r, line, truncated)
			}
			if err != io.EOF {
				s.logger.Warn("Server output stream ended with error", "run_id", r.id, "error", err.Error())
				// keep the writer unblocked until the process exits
				_, _ = io.Copy(io.Discard, out)
			}
			return
		}

		room := maxLineBytes - len(line)
		if len(chunk) > room {
			chunk = chunk[:max(room, 0)]
			truncated = true
		}
		line = append(line, chunk...)
		if more {
			continue
		}
		s.handleLine(r, line, truncated)
		line, truncated = line[:0], false
	}
}

func (s *Supervisor) handleLine(r *run, raw []byte, truncated bool) {
	line := strings.TrimRight(string(raw), "\r")
	if truncated {
		s.logger.Info("[SERVER] "+line, "run_id", r.id, "truncated", true)
	} else {
		s.logger.Info("[SERVER] "+line, "run_id", r.id)
	}

	entry := s.logs.Append(r.id, line)
	s.mu.Lock()
	onLine := s.onLine
	s.mu.Unlock()
	if onLine != nil {
		onLine(entry)
	}

	if !r.isReady() && strings.Contains(line, ReadinessMarker) {
		s.setReady(r)
	}
}

func (s *Supervisor) setReady(r *run) {
	if !r.markReady() {
		return
	}
	s.mu.Lock()
	current := s.current == r
	if current {
		s.running.Store(true)
		s.state = StateRunning
	}
	s.mu.Unlock()

	if current {
		s.logger.Info("Server is ready", "run_id", r.id, "port", r.port)
		s.notifyState()
	}
}

// watch waits for r to exit and clears it
func (s *Supervisor) watch(r *run) {
	r.exitErr = r.proc.Wait()
	<-r.outputDone
	ready := r.isReady()

	s.mu.Lock()
	current := s.current == r
	if current {
		if !ready {
			s.startFailed.Store(true)
			s.state = StateFailed
		} else {
			s.state = StateIdle
		}
		s.running.Store(false)
		s.current = nil
	}
	s.mu.Unlock()

	fields := []interface{}{"run_id", r.id, "ready", ready}
	if r.exitErr != nil {
		fields = append(fields, "error", r.exitErr.Error())
	}
	if current && !ready {
		s.logger.Error("Server exited before it was ready", fields...)
	} else {
		s.logger.Info("Server process exited", fields...)
	}
	if current {
		s.notifyState()
	}
	close(r.done)
}

// WaitForReady blocks until the current run is ready. On exit, timeout or
// cancellation the run is stopped and an error is returned.
func (s *Supervisor) WaitForReady(ctx context.Context) error {
	s.mu.Lock()
	r := s.current
	s.mu.Unlock()
	if r == nil {
		return errors.New("wait_for_server_ready", stderrors.New("the server is not running"), errors.ErrCodeReadiness)
	}
	return s.waitFor(ctx, r)
}

func (s *Supervisor) waitFor(ctx context.Context, r *run) error {
	timer := time.NewTimer(s.readyTimeout)
	defer timer.Stop()

	var cause error
	code := errors.ErrCodeReadiness
	select {
	case <-r.ready:
		return nil
	case <-r.done:
		cause = stderrors.New("the server exited before it was ready")
		if r.exitErr != nil {
			cause = fmt.Errorf("the server exited before it was ready: %w", r.exitErr)
		}
	case <-timer.C:
		cause = fmt.Errorf("the server was not ready after %s", s.readyTimeout)
		code = errors.ErrCodeTimeout
	case <-ctx.Done():
		cause = fmt.Errorf("waiting for the server was cancelled: %w", ctx.Err())
	}

	s.mu.Lock()
	if s.current == r || s.current == nil {
		s.startFailed.Store(true)
	}
	s.mu.Unlock()
	if err := s.stop(r); err != nil {
		logging.LogError(s.logger, err, "stop_server", map[string]interface{}{"run_id": r.id})
	}

	s.mu.Lock()
	if s.current == nil && s.state == StateFailed {
		s.state = StateIdle
	}
	s.mu.Unlock()
	s.notifyState()

	err := errors.NewWithContext("wait_for_server_ready", cause, code, map[string]string{
		"run_id": r.id,
		"port":   strconv.Itoa(r.port),
	})
	logging.LogError(s.logger, err, "wait_for_server_ready", nil)
	return err
}

// Stop kills the current process. It is a no-op when nothing is running.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	r := s.current
	s.mu.Unlock()
	if r == nil {
		return nil
	}
	return s.stop(r)
}

func (s *Supervisor) stop(r *run) error {
	s.mu.Lock()
	previous := s.state
	if s.current == r {
		s.state = StateStopping
	}
	s.mu.Unlock()

	if err := r.proc.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		s.mu.Lock()
		if s.current == r {
			s.state = previous
		}
		s.mu.Unlock()
		return errors.NewWithContext("stop_server", fmt.Errorf("failed to kill the server: %w", err),
			errors.ErrCodeKill, map[string]string{"run_id": r.id, "pid": strconv.Itoa(r.proc.Pid())})
	}

	select {
	case <-r.done:
	case <-time.After(s.stopTimeout):
		s.logger.Warn("Server did not exit after kill", "run_id", r.id, "timeout", s.stopTimeout.String())
	}

	s.mu.Lock()
	cleared := s.current == r
	if cleared {
		s.current = nil
		s.running.Store(false)
		s.state = StateIdle
	}
	s.mu.Unlock()

	s.logger.Info("Server stopped", "run_id", r.id)
	if cleared {
		s.notifyState()
	}
	return nil
}

// Restart stops the current process, if any, and starts a new one. A kill
// failure aborts the restart.
func (s *Supervisor) Restart(ctx context.Context) error {
	if err := s.Stop(); err != nil {
		return err
	}
	return s.Start(ctx)
}

// IsRunning reports whether the server has signalled readiness and not exited
func (s *Supervisor) IsRunning() bool {
	return s.running.Load()
}

// StartFailed reports whether the last run ended before readiness
func (s *Supervisor) StartFailed() bool {
	return s.startFailed.Load()
}

// Port returns the port of the live run, else the configured port
func (s *Supervisor) Port() int {
	s.mu.Lock()
	r := s.current
	s.mu.Unlock()
	if r != nil {
		return r.port
	}

	cfg, err := s.cfg.Load()
	if err != nil {
		s.logger.Warn("Falling back to the default port", "error", err.Error())
		return config.DefaultServerPort
	}
	return cfg.ServerPortOrDefault()
}

// Status returns the current lifecycle snapshot
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	st := Status{
		State:       s.state,
		Running:     s.running.Load(),
		StartFailed: s.startFailed.Load(),
	}
	r := s.current
	s.mu.Unlock()

	if r == nil {
		st.Port = s.Port()
		return st
	}

	st.PID = r.proc.Pid()
	st.Port = r.port
	st.RunID = r.id
	st.StartedAt = r.startedAt
	st.UptimeSecs = int64(time.Since(r.startedAt).Seconds())
	if s.memory != nil && st.PID > 0 {
		if mb, err := s.memory(st.PID); err == nil {
			st.MemoryMB = mb
		}
	}
	return st
}

// Logs returns the buffered server output
func (s *Supervisor) Logs() []LogLine {
	return s.logs.Snapshot()
}

func (s *Supervisor) notifyState() {
	s.mu.Lock()
	fn := s.onState
	s.mu.Unlock()
	if fn != nil {
		fn(s.Status())
	}
}
