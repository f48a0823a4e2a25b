package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"readerdesk/internal/config"
	"readerdesk/internal/paths"
	"readerdesk/internal/testutils"
)

type fakeProcess struct {
	pid     int
	out     *io.PipeReader
	w       *io.PipeWriter
	done    chan struct{}
	once    sync.Once
	exitErr error
	kills   atomic.Int32

	mu      sync.Mutex
	killErr error
}

func newFakeProcess(pid int) *fakeProcess {
	r, w := io.Pipe()
	return &fakeProcess{pid: pid, out: r, w: w, done: make(chan struct{})}
}

func (p *fakeProcess) Pid() int          { return p.pid }
func (p *fakeProcess) Output() io.Reader { return p.out }

func (p *fakeProcess) Wait() error {
	<-p.done
	return p.exitErr
}

func (p *fakeProcess) Kill() error {
	p.kills.Add(1)
	p.mu.Lock()
	killErr := p.killErr
	p.mu.Unlock()
	if killErr != nil {
		return killErr
	}
	select {
	case <-p.done:
		return os.ErrProcessDone
	default:
	}
	p.Exit(stderrors.New("signal: killed"))
	return nil
}

func (p *fakeProcess) setKillErr(err error) {
	p.mu.Lock()
	p.killErr = err
	p.mu.Unlock()
}

// Emit writes one output line; it blocks until the supervisor reads it
func (p *fakeProcess) Emit(line string) {
	fmt.Fprintln(p.w, line)
}

func (p *fakeProcess) Exit(err error) {
	p.once.Do(func() {
		p.exitErr = err
		p.w.Close()
		close(p.done)
	})
}

type fakeLauncher struct {
	mu        sync.Mutex
	specs     []LaunchSpec
	launchErr error
	launched  chan *fakeProcess
	nextPid   int
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{launched: make(chan *fakeProcess, 8), nextPid: 4000}
}

func (l *fakeLauncher) Launch(ctx context.Context, spec LaunchSpec) (Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.specs = append(l.specs, spec)
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	l.nextPid++
	p := newFakeProcess(l.nextPid)
	l.launched <- p
	return p, nil
}

func (l *fakeLauncher) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.specs)
}

func (l *fakeLauncher) lastSpec() LaunchSpec {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.specs[len(l.specs)-1]
}

type fakeJava struct {
	path string
	err  error
}

func (j fakeJava) Resolve(ctx context.Context, configured string) (string, error) {
	if j.err != nil {
		return "", j.err
	}
	if configured != "" {
		return configured, nil
	}
	return j.path, nil
}

type staticConfig struct {
	cfg *config.ReaderConfig
}

func (c staticConfig) Load() (*config.ReaderConfig, error) {
	return c.cfg.Clone(), nil
}

type harness struct {
	sup      *Supervisor
	launcher *fakeLauncher
	logger   *testutils.RecordingLogger
	dirs     paths.Dirs
}

func newHarness(t *testing.T, cfg *config.ReaderConfig, java fakeJava) *harness {
	t.Helper()

	home := t.TempDir()
	jar := filepath.Join(home, "reader.jar")
	if err := os.WriteFile(jar, []byte("jar"), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		cfg = &config.ReaderConfig{}
	}

	h := &harness{
		launcher: newFakeLauncher(),
		logger:   &testutils.RecordingLogger{},
		dirs:     paths.FromHome(home, jar),
	}
	h.sup = NewSupervisor(Options{
		Dirs:         h.dirs,
		Config:       staticConfig{cfg: cfg},
		Java:         java,
		Launcher:     h.launcher,
		Logger:       h.logger,
		ReadyTimeout: 2 * time.Second,
		StopTimeout:  time.Second,
	})
	h.sup.memory = func(int) (float64, error) { return 42, nil }
	return h
}

// startAsync runs Start in the background and returns the launched process
func (h *harness) startAsync(t *testing.T) (*fakeProcess, <-chan error) {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- h.sup.Start(context.Background()) }()

	select {
	case p := <-h.launcher.launched:
		return p, errCh
	case err := <-errCh:
		t.Fatalf("Start() returned before launching: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("process was not launched")
	}
	return nil, nil
}

// startReady starts the server and makes it signal readiness
func (h *harness) startReady(t *testing.T) *fakeProcess {
	t.Helper()
	p, errCh := h.startAsync(t)
	p.Emit("INFO ReaderApplication Started in 2.1 seconds")
	if err := waitErr(t, errCh); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return p
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
		return nil
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
