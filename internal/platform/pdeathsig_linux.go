package platform

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// setParentDeathSignal kills the child when the shell dies unexpectedly
func setParentDeathSignal(attr *syscall.SysProcAttr) {
	attr.Pdeathsig = syscall.Signal(unix.SIGKILL)
}
