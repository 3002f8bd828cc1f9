package job

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func setpgidAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends SIGTERM to the child's whole process group, the
// Go equivalent of job.rs's `kill -s TERM <pid>` cancellation path.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = unix.Kill(-cmd.Process.Pid, unix.SIGTERM)
}
