// Package platform holds the OS-specific parts of child process control.
package platform

import (
	"os"
	"os/exec"
)

// ProcessControl prepares commands before they start and terminates the
// processes they produce.
type ProcessControl interface {
	// Configure sets OS attributes on cmd. It must be called before Start.
	Configure(cmd *exec.Cmd)
	// Kill forcibly terminates p and anything it spawned. A process that has
	// already exited yields os.ErrProcessDone.
	Kill(p *os.Process) error
}

// Default is the ProcessControl for the running OS
var Default ProcessControl = newProcessControl()

// Configure applies the default platform attributes to cmd
func Configure(cmd *exec.Cmd) {
	Default.Configure(cmd)
}

// Kill terminates p using the default platform control
func Kill(p *os.Process) error {
	return Default.Kill(p)
}
