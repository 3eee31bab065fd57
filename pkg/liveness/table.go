package liveness

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessTable lists the pids of every running process.
type ProcessTable interface {
	PIDs() ([]int, error)
}

// DefaultQueryTimeout bounds one process table query.
const DefaultQueryTimeout = 2 * time.Second

// SystemTable asks the operating system for the process table through
// gopsutil, so no external command is run on any platform.
type SystemTable struct {
	Timeout time.Duration
}

// PIDs implements ProcessTable.
func (t SystemTable) PIDs() ([]int, error) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	raw, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, err
	}
	pids := make([]int, 0, len(raw))
	for _, pid := range raw {
		if pid > 0 {
			pids = append(pids, int(pid))
		}
	}
	return pids, nil
}

// StaticTable is a fixed process table, mostly for tests.
type StaticTable []int

// PIDs implements ProcessTable.
func (t StaticTable) PIDs() ([]int, error) {
	return append([]int(nil), t...), nil
}

// DefaultTable returns the process table of the running system.
func DefaultTable() ProcessTable {
	return SystemTable{}
}
