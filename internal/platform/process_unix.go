//go:build unix

package platform

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// unixControl starts each child in its own process group so the whole group
// can be signalled at once.
type unixControl struct{}

func newProcessControl() ProcessControl {
	return unixControl{}
}

func (unixControl) Configure(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	setParentDeathSignal(cmd.SysProcAttr)
}

func (unixControl) Kill(p *os.Process) error {
	if p == nil {
		return os.ErrProcessDone
	}
	err := unix.Kill(-p.Pid, unix.SIGKILL)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ESRCH):
		// No group; the child may not have called setpgid yet.
		if killErr := p.Kill(); killErr != nil {
			return killErr
		}
		return nil
	default:
		return err
	}
}
