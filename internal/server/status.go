package server

import (
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// State is the supervisor lifecycle state
type State string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateFailed   State = "failed"
	StateStopping State = "stopping"
)

// Status is a point-in-time view of the supervised server
type Status struct {
	State       State     `json:"state"`
	Running     bool      `json:"running"`
	StartFailed bool      `json:"startFailed"`
	PID         int       `json:"pid,omitempty"`
	Port        int       `json:"port"`
	RunID       string    `json:"runId,omitempty"`
	StartedAt   time.Time `json:"startedAt,omitempty"`
	UptimeSecs  int64     `json:"uptimeSecs,omitempty"`
	MemoryMB    float64   `json:"memoryMB,omitempty"`
}

// processMemoryMB returns the resident set size of pid in MiB
func processMemoryMB(pid int) (float64, error) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return 0, err
	}
	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(memInfo.RSS) / 1024 / 1024, nil
}
