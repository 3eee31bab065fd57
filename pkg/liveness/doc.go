// Package liveness tells the renderer whether its producer still exists.
//
// The process table is queried natively through gopsutil on every platform.
// The pids are compared as integers, so a pid can never match as a substring
// of another pid or of the command line doing the check.
//
//	m := liveness.NewMonitor(ppid, liveness.DefaultTable(), logger)
//	if !m.Alive() {
//	    // producer is gone; exit
//	}
package liveness
