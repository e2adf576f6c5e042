//go:build !windows

package process

import "syscall"

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID). Used to reap Chrome helper processes
// that outlive the browser connection.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort cleanup; launcher.Kill() is the primary shutdown path.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
