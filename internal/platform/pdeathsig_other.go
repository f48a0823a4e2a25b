//go:build unix && !linux

package platform

import "syscall"

func setParentDeathSignal(*syscall.SysProcAttr) {}
