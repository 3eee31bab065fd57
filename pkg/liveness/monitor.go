package liveness

import (
	"github.com/bft-labs/liveplot/pkg/log"
)

// Monitor answers whether the producer process is still alive.
type Monitor struct {
	pid    int
	table  ProcessTable
	logger log.Logger
}

// NewMonitor watches pid using table. A nil table means DefaultTable().
func NewMonitor(pid int, table ProcessTable, logger log.Logger) *Monitor {
	if table == nil {
		table = DefaultTable()
	}
	return &Monitor{
		pid:    pid,
		table:  table,
		logger: log.OrNoop(logger).With(log.Component("liveness")),
	}
}

// PID returns the watched process id.
func (m *Monitor) PID() int {
	return m.pid
}

// Alive reports whether the watched pid is in the process table. Pids are
// compared as integers, so 12 never matches 123. When the table cannot be
// read the producer is assumed alive.
func (m *Monitor) Alive() bool {
	pids, err := m.table.PIDs()
	if err != nil {
		m.logger.Warn("process table unavailable, assuming producer alive",
			log.Int("pid", m.pid),
			log.Err(err),
		)
		return true
	}
	for _, pid := range pids {
		if pid == m.pid {
			return true
		}
	}
	m.logger.Info("producer gone", log.Int("pid", m.pid))
	return false
}
