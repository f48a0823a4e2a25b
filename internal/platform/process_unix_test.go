//go:build unix

package platform

import (
	"errors"
	"os"
	"os/exec"
	"testing"
	"time"
)

func TestConfigure_SetsProcessGroup(t *testing.T) {
	cmd := exec.Command("true")
	Configure(cmd)

	if cmd.SysProcAttr == nil || !cmd.SysProcAttr.Setpgid {
		t.Fatal("Expected Setpgid to be set")
	}
}

func TestKill_TerminatesGroup(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	cmd := exec.Command(sh, "-c", "sleep 30 & wait")
	Configure(cmd)
	if err := cmd.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	if err := Kill(cmd.Process); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit after Kill")
	}

	if err := Kill(cmd.Process); !errors.Is(err, os.ErrProcessDone) {
		t.Errorf("Kill() after exit = %v, want os.ErrProcessDone", err)
	}
}

func TestKill_NilProcess(t *testing.T) {
	if err := Kill(nil); !errors.Is(err, os.ErrProcessDone) {
		t.Errorf("Kill(nil) = %v, want os.ErrProcessDone", err)
	}
}
