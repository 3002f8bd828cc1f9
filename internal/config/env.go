package config

import "os"

// ResymEnabled reports whether ReSym job stages are enabled for this
// invocation. Grounded on job.rs's resym_enabled/expected_resym_dir_env:
// ReSym requires either a local model checkout directory or a reachable
// remote inference server to be configured.
func ResymEnabled() bool {
	return os.Getenv("ENABLE_RESYM") == "1"
}

// ResymBaseDir is the local model checkout directory for ReSym, used
// when RemoteServer is unset.
func ResymBaseDir() string { return os.Getenv("RESYM_BASE_DIR") }

// RemoteResymBaseDir mirrors ResymBaseDir's layout but on the remote
// inference host named by RemoteServer.
func RemoteResymBaseDir() string { return os.Getenv("REMOTE_RESYM_BASE_DIR") }

// RemoteServer is the hostname of a shared ReSym inference server, if
// any. When set, the GPU-bound ReSym stages (Part2, Part4) are
// dispatched there instead of running locally, and their per-kind
// concurrency cap widens from 1 to 3.
func RemoteServer() string { return os.Getenv("REMOTE_SERVER") }

// HFToken is a Hugging Face access token forwarded to ReSym's model
// download step, when needed.
func HFToken() string { return os.Getenv("HF_TOKEN") }

// PrintJobCommand reports whether every job's underlying command line
// should be echoed before it runs. Matches main.rs's strict validation:
// any value other than unset or "1" is a misconfiguration.
func PrintJobCommand() (bool, error) {
	v := os.Getenv("PRINT_JOB_COMMAND")
	if v == "" {
		return false, nil
	}
	if v != "1" {
		return false, errInvalidPrintJobCommand(v)
	}
	return true, nil
}

type invalidPrintJobCommandErr struct{ v string }

func (e invalidPrintJobCommandErr) Error() string {
	return "config: PRINT_JOB_COMMAND must be unset or \"1\", got " + e.v
}

func errInvalidPrintJobCommand(v string) error { return invalidPrintJobCommandErr{v: v} }
