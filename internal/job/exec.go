package job

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultTimeout is the wall-clock budget given to a single job's child
// process before `timeout` sends it SIGTERM (and SIGKILL 2s later).
const DefaultTimeout = 30 * time.Minute

var (
	systemdRunOnce sync.Once
	systemdRunPath string
)

// systemdRunAvailable reports whether the memory-limiting systemd-run
// wrapper can be used: the binary must exist, we must not be running
// inside a podman container (systemd-run doesn't nest well there), and
// the host must be on the unified (v2) cgroup hierarchy, since
// MemoryMax/MemorySwapMax require it. Each failing check disables the
// wrapper and is never fatal; all but a missing binary are logged as
// warnings.
// Grounded on main.rs's SYSTEMD_RUN_PATH lazy static.
func systemdRunAvailable() string {
	systemdRunOnce.Do(func() {
		const path = "/usr/bin/systemd-run"
		if _, err := os.Stat(path); err != nil {
			return
		}
		if os.Getenv("container") == "podman" {
			fmt.Fprintln(os.Stderr, "job: WARN running inside podman, disabling systemd-run memory limiting")
			return
		}
		var fs unix.Statfs_t
		if err := unix.Statfs("/sys/fs/cgroup", &fs); err != nil {
			fmt.Fprintf(os.Stderr, "job: WARN could not stat /sys/fs/cgroup: %v\n", err)
			return
		}
		const cgroup2fsMagic = 0x63677270 // "cgrp" — Linux CGROUP2_SUPER_MAGIC
		switch int64(fs.Type) {
		case cgroup2fsMagic:
			systemdRunPath = path
		case 0x01021994: // TMPFS_MAGIC: cgroups v1
			fmt.Fprintln(os.Stderr, "job: WARN host is on cgroups v1; pass systemd.unified_cgroup_hierarchy=1 on the kernel command line to enable memory limiting")
		default:
			fmt.Fprintf(os.Stderr, "job: WARN unrecognized /sys/fs/cgroup filesystem type %#x\n", fs.Type)
		}
	})
	return systemdRunPath
}

// wrapCommand prepends `timeout --verbose --kill-after=2 <seconds>` and,
// when available and requested, `systemd-run --user --scope --property
// MemoryMax=64G --property MemorySwapMax=0` to argv.
func wrapCommand(argv []string, timeout time.Duration, memLimit bool) []string {
	var wrapped []string
	seconds := "0"
	if timeout > 0 {
		seconds = fmt.Sprintf("%d", int(timeout.Seconds()))
	}
	wrapped = append(wrapped, "timeout", "--verbose", "--kill-after=2", seconds)
	if memLimit {
		if path := systemdRunAvailable(); path != "" {
			wrapped = append(wrapped, path, "--user", "--scope",
				"--property", "MemoryMax=64G", "--property", "MemorySwapMax=0")
		}
	}
	return append(wrapped, argv...)
}

// RunProcess executes argv under the timeout/systemd-run wrapper,
// polling ctx for cancellation every 100ms and sending SIGTERM to the
// child's process group if it fires before the process exits on its
// own. stdout/stderr are inherited only when printCommand is true (the
// teacher's convention of only surfacing subprocess noise in verbose
// mode), matching job.rs's Stdio::null()-unless-print-command behavior.
func RunProcess(ctx context.Context, argv []string, timeout time.Duration, memLimit, printCommand bool) error {
	full := wrapCommand(argv, timeout, memLimit)
	if printCommand {
		fmt.Fprintln(os.Stderr, "+", shellQuoteArgs(full))
	}

	cmd := exec.Command(full[0], full[1:]...)
	cmd.Stdin = nil
	if printCommand {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	cmd.SysProcAttr = setpgidAttr()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("job: starting %v: %w", full[0], err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			return err
		case <-ticker.C:
			if ctx.Err() != nil {
				killProcessGroup(cmd)
				<-done
				return ctx.Err()
			}
		}
	}
}

func shellQuoteArgs(argv []string) string {
	s := ""
	for i, a := range argv {
		if i > 0 {
			s += " "
		}
		s += shellQuote(a)
	}
	return s
}

// shellQuote renders a to a form that would re-parse as a single shell
// word, for human-readable `print_command` echo only — never used to
// build an actually-executed command line. Grounded on job.rs's
// shell_quote.
func shellQuote(a string) string {
	needsQuote := a == ""
	for _, r := range a {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.' || r == '/' || r == ':' || r == '=':
		default:
			needsQuote = true
		}
	}
	if !needsQuote {
		return a
	}
	out := "'"
	for _, r := range a {
		if r == '\'' {
			out += `'"'"'`
		} else {
			out += string(r)
		}
	}
	return out + "'"
}
