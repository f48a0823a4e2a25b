package server

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"readerdesk/internal/platform"
)

// Process is a started server process
type Process interface {
	Pid() int
	// Output yields the combined stdout and stderr and reaches EOF after exit
	Output() io.Reader
	// Wait blocks until the process exits; it may be called repeatedly
	Wait() error
	Kill() error
}

// LaunchSpec describes the command to start
type LaunchSpec struct {
	Java string
	Args []string
	Dir  string
}

// Launcher starts server processes
type Launcher interface {
	Launch(ctx context.Context, spec LaunchSpec) (Process, error)
}

// ExecLauncher starts real OS processes
type ExecLauncher struct {
	Control platform.ProcessControl
}

// NewExecLauncher uses the platform's default process control
func NewExecLauncher() *ExecLauncher {
	return &ExecLauncher{Control: platform.Default}
}

// Launch starts the process. ctx only bounds the start itself; the process
// outlives it and is ended by Kill.
func (l *ExecLauncher) Launch(ctx context.Context, spec LaunchSpec) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(spec.Java, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.WaitDelay = 2 * time.Second
	l.Control.Configure(cmd)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return nil, err
	}

	p := &execProcess{cmd: cmd, control: l.Control, output: pr, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		pw.Close()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd     *exec.Cmd
	control platform.ProcessControl
	output  *io.PipeReader
	done    chan struct{}
	err     error
	killMu  sync.Mutex
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Output() io.Reader {
	return p.output
}

func (p *execProcess) Wait() error {
	<-p.done
	return p.err
}

func (p *execProcess) Kill() error {
	p.killMu.Lock()
	defer p.killMu.Unlock()

	select {
	case <-p.done:
		return os.ErrProcessDone
	default:
	}
	return p.control.Kill(p.cmd.Process)
}
