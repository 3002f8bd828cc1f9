package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ftahirops/trexrunner/internal/cache"
)

// Job is one unit of work: a Kind applied to a base path, with a counter
// tracking how many times it has already been retried after failure.
type Job struct {
	Kind         Kind
	Base         string
	RetryCounter int
}

// RunArgs are the knobs a caller can set on a single job invocation,
// mirroring job.rs's JobRunArgs.
type RunArgs struct {
	NoTimeout             bool
	NoMemLimit            bool
	SkipCacheRead         bool
	CacheRefreshOnly      bool
	ForceRunEvenIfSkipped bool
	PrintCommand          bool
}

// Via reports how a job's outputs were produced.
type Via int

const (
	ViaRun Via = iota
	ViaCache
	ViaSkip
)

// Success describes a job that produced its outputs one way or another.
type Success struct {
	Via     Via
	Runtime *time.Duration
}

// FailReason enumerates why a job didn't succeed.
type FailReason int

const (
	ReasonInputFileNotFound FailReason = iota
	ReasonCacheInsertFail
	ReasonJobRunFail
	ReasonRetryRequested
)

// Fail is returned when a job doesn't succeed; RetryRequested callers
// should requeue Job (with RetryCounter already incremented) rather than
// reporting a hard failure.
type Fail struct {
	Job    Job
	Reason FailReason
	Err    error
}

func (f *Fail) Error() string {
	return fmt.Sprintf("job: %v %s failed (%v): %v", f.Job.Kind, f.Job.Base, f.Reason, f.Err)
}

func (f *Fail) Unwrap() error { return f.Err }

// ReRunnableCommandLine reconstructs the exact `runner single-job ...`
// invocation that would re-run this job in isolation, for printing
// alongside a hard-failure report. Grounded on
// job.rs's re_runnable_command_line_flags.
func (j Job) ReRunnableCommandLine(cacheRefreshOnly bool) string {
	s := fmt.Sprintf("runner single-job -job %s -base %s", j.Kind, j.Base)
	if cacheRefreshOnly {
		s += " # To rebuild, so that _then_ it can be cached"
	}
	return s
}

// RunWouldBeInstant reports whether running j right now would return
// immediately without spawning a child process: it's skip-listed, its
// inputs are missing, it's a cache-refresh-only pass, or it is cacheable,
// cache reads are enabled, and the cache already covers every output.
// The runner uses this to decide whether a job needs its own pacing tick
// or can be spawned right after the previous one.
func RunWouldBeInstant(c *cache.Cache, j Job, args RunArgs) bool {
	if !args.ForceRunEvenIfSkipped && IsSkipped(j.Kind, j.Base) {
		return true
	}
	manifest := InputsDependenciesAndOutputs(j.Kind, j.Base)
	for _, in := range manifest.Inputs {
		if _, err := os.Stat(in); err != nil {
			return true
		}
	}
	if args.CacheRefreshOnly {
		return true
	}
	if !j.Kind.CanCache() || args.SkipCacheRead {
		return false
	}
	depHash, inpHash, ok := manifestHashes(manifest)
	if !ok {
		return false
	}
	entries, err := c.Get(j.Kind.String(), depHash, inpHash)
	if err != nil || len(entries) == 0 {
		return false
	}
	return cacheCoversOutputs(entries, manifest.Outputs)
}

func manifestHashes(m Manifest) (depHash, inpHash string, ok bool) {
	depHash, err := cache.DepHash(m.Dependencies)
	if err != nil {
		return "", "", false
	}
	inpHash, err = cache.InputHash(m.Inputs)
	if err != nil {
		return "", "", false
	}
	return depHash, inpHash, true
}

func cacheCoversOutputs(entries map[string]cache.Entry, outputs []string) bool {
	for _, out := range outputs {
		if _, ok := entries[filepath.Base(out)]; !ok {
			return false
		}
	}
	return true
}

// Run executes j to completion: via the cache when possible, via a live
// child process otherwise, handling retries and partial-output cleanup
// on failure. Grounded directly on job.rs's Job::run.
func Run(ctx context.Context, c *cache.Cache, j Job, args RunArgs) (Success, error) {
	if ctx.Err() != nil {
		return Success{}, &Fail{Job: j, Reason: ReasonJobRunFail, Err: ctx.Err()}
	}

	if !args.ForceRunEvenIfSkipped && IsSkipped(j.Kind, j.Base) {
		return Success{Via: ViaSkip}, nil
	}

	manifest := InputsDependenciesAndOutputs(j.Kind, j.Base)
	for _, in := range manifest.Inputs {
		if _, err := os.Stat(in); err != nil {
			return Success{}, &Fail{Job: j, Reason: ReasonInputFileNotFound, Err: err}
		}
	}

	if args.CacheRefreshOnly {
		for _, out := range manifest.Outputs {
			if _, err := os.Stat(out); err != nil {
				return Success{}, &Fail{Job: j, Reason: ReasonJobRunFail, Err: fmt.Errorf("output %q missing for cache-refresh-only pass", out)}
			}
		}
		if err := insertIntoCache(c, j, manifest, nil); err != nil {
			return Success{}, &Fail{Job: j, Reason: ReasonCacheInsertFail, Err: err}
		}
		return Success{Via: ViaRun}, nil
	}

	cacheable := j.Kind.CanCache()
	var depHash, inpHash string
	var cacheHit map[string]cache.Entry
	if cacheable && !args.SkipCacheRead {
		var ok bool
		depHash, inpHash, ok = manifestHashes(manifest)
		if ok {
			entries, err := c.Get(j.Kind.String(), depHash, inpHash)
			if err == nil && len(entries) > 0 && cacheCoversOutputs(entries, manifest.Outputs) {
				cacheHit = entries
			}
		}
	}

	if cacheHit != nil {
		if err := restoreFromCache(cacheHit, manifest.Outputs); err != nil {
			return Success{}, &Fail{Job: j, Reason: ReasonJobRunFail, Err: err}
		}
		runtime, ok, _ := c.GetRuntime(j.Kind.String(), depHash, inpHash)
		var rp *time.Duration
		if ok {
			rp = &runtime
		}
		return Success{Via: ViaCache, Runtime: rp}, nil
	}

	argv, err := CommandLine(j.Kind, j.Base)
	if err != nil {
		return Success{}, &Fail{Job: j, Reason: ReasonJobRunFail, Err: err}
	}

	timeout := DefaultTimeout
	if args.NoTimeout {
		timeout = 0
	}
	start := time.Now()
	runErr := RunProcess(ctx, argv, timeout, !args.NoMemLimit, args.PrintCommand)
	elapsed := time.Since(start)

	if runErr != nil {
		cleanupPartialOutputs(manifest.Outputs)
		if j.RetryCounter >= j.Kind.NumberOfRetriesAllowed() {
			return Success{}, &Fail{Job: j, Reason: ReasonJobRunFail, Err: runErr}
		}
		retried := j
		retried.RetryCounter++
		return Success{}, &Fail{Job: retried, Reason: ReasonRetryRequested, Err: runErr}
	}

	if cacheable {
		if err := insertIntoCache(c, j, manifest, &elapsed); err != nil {
			return Success{}, &Fail{Job: j, Reason: ReasonCacheInsertFail, Err: err}
		}
	}
	return Success{Via: ViaRun, Runtime: &elapsed}, nil
}

func insertIntoCache(c *cache.Cache, j Job, manifest Manifest, runtime *time.Duration) error {
	depHash, inpHash, ok := manifestHashes(manifest)
	if !ok {
		// Dependencies are config errors, not transient cache misses;
		// surface a real hash computation here.
		var err error
		depHash, err = cache.DepHash(manifest.Dependencies)
		if err != nil {
			return err
		}
		inpHash, err = cache.InputHash(manifest.Inputs)
		if err != nil {
			return err
		}
	}
	outputs := make(map[string]string, len(manifest.Outputs))
	for _, out := range manifest.Outputs {
		outputs[filepath.Base(out)] = out
	}
	return c.Insert(j.Kind.String(), depHash, inpHash, outputs, runtime)
}

func restoreFromCache(entries map[string]cache.Entry, outputs []string) error {
	for _, out := range outputs {
		entry, ok := entries[filepath.Base(out)]
		if !ok {
			return fmt.Errorf("job: cache missing output %q", out)
		}
		os.RemoveAll(out)
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
		if err := copyCacheEntry(entry, out); err != nil {
			return err
		}
	}
	return nil
}

func copyCacheEntry(entry cache.Entry, dst string) error {
	if entry.Kind == cache.EntryDir {
		return os.MkdirAll(dst, 0755)
	}
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

// cleanupPartialOutputs removes any output files a failed run managed to
// produce, then removes now-empty output directories bottom-up until a
// fixed point, warning about any that remain non-empty. Grounded on
// job.rs's cleanup-on-failure block.
func cleanupPartialOutputs(outputs []string) {
	dirs := make(map[string]bool)
	for _, out := range outputs {
		os.Remove(out)
		dirs[filepath.Dir(out)] = true
	}
	for changed := true; changed; {
		changed = false
		for d := range dirs {
			entries, err := os.ReadDir(d)
			if err != nil {
				continue
			}
			if len(entries) == 0 {
				if os.Remove(d) == nil {
					delete(dirs, d)
					changed = true
				}
			}
		}
	}
	for d := range dirs {
		if entries, err := os.ReadDir(d); err == nil && len(entries) > 0 {
			fmt.Fprintf(os.Stderr, "job: WARN left non-empty output directory %q after failure cleanup\n", d)
		}
	}
}
