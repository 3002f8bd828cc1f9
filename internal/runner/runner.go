// Package runner implements the bounded worker-pool scheduler that
// drives job.Run across a queue of jobs: RAM-aware admission, per-kind
// concurrency caps, retry requeueing, cooperative cancellation, and
// timing-stats accumulation. Grounded directly on
// original_source/utils/runner/src/main.rs's Runner/do_some_work.
package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ftahirops/trexrunner/internal/cache"
	"github.com/ftahirops/trexrunner/internal/job"
)

// Runner owns a pending queue and the live worker set draining it.
type Runner struct {
	cache          *cache.Cache
	args           job.RunArgs
	maxParallelism int
	ramReader      RAMReader
	printCommand   bool

	mu        sync.Mutex
	queue     []job.Job
	kindSems  map[job.Kind]*semaphore.Weighted
	active    int
	quitting  atomic.Bool

	Done        int
	DoneViaCache int
	DoneViaSkip int
	Failed      int
	Retried     int

	TimingStats map[timingKey]float64

	onMessage func(string)
}

type timingKey struct {
	Kind job.Kind
	Base string
}

// New builds a Runner with maxParallelism concurrent workers.
func New(c *cache.Cache, args job.RunArgs, maxParallelism int) *Runner {
	return &Runner{
		cache:          c,
		args:           args,
		maxParallelism: maxParallelism,
		ramReader:      gopsutilRAMReader{},
		kindSems:       make(map[job.Kind]*semaphore.Weighted),
		TimingStats:    make(map[timingKey]float64),
		onMessage:      func(string) {},
	}
}

// OnMessage installs a callback invoked with human-readable progress
// lines (hard-failure reports, retry notices). A progress UI can use
// this to route messages through its own rendering.
func (r *Runner) OnMessage(f func(string)) { r.onMessage = f }

// Enqueue adds jobs to the pending queue.
func (r *Runner) Enqueue(jobs ...job.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, jobs...)
}

// Len returns the number of jobs still pending (not yet started).
func (r *Runner) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// RequestQuit sets the cooperative cancellation flag; in-flight jobs are
// given a chance to observe ctx.Done() and exit, new jobs stop being
// started.
func (r *Runner) RequestQuit() { r.quitting.Store(true) }

// EnoughRAMForNewProcess reports whether at least half of total host RAM
// is currently available, with an escape hatch: if no workers are
// currently running at all, a new one is allowed regardless (otherwise a
// single oversized job could wedge the whole queue forever). Grounded on
// main.rs's enough_ram_for_new_process.
func (r *Runner) EnoughRAMForNewProcess(activeWorkers int) bool {
	total, available, err := r.ramReader.Read()
	if err != nil {
		// Can't tell; don't block progress over a metrics failure.
		return true
	}
	if total == 0 {
		return true
	}
	if activeWorkers == 0 {
		return true
	}
	return float64(available)/float64(total) >= 0.5
}

func (r *Runner) semFor(k job.Kind, remoteServerConfigured bool) *semaphore.Weighted {
	r.mu.Lock()
	defer r.mu.Unlock()
	sem, ok := r.kindSems[k]
	if !ok {
		sem = semaphore.NewWeighted(int64(k.MaxParallelWithSameKind(remoteServerConfigured)))
		r.kindSems[k] = sem
	}
	return sem
}

// RunOne runs a single job to completion using a one-worker Runner,
// returning its terminal result. Grounded on main.rs's run_one.
func RunOne(ctx context.Context, c *cache.Cache, j job.Job, args job.RunArgs) (job.Success, error) {
	r := New(c, args, 1)
	r.Enqueue(j)
	results := r.Drain(ctx, false)
	return results[0].Success, results[0].Err
}

// Result pairs a finished job with its outcome.
type Result struct {
	Job     job.Job
	Success job.Success
	Err     error
}

// Drain runs every queued job (including retries) to completion,
// respecting maxParallelism, per-kind caps, and RAM admission, and
// returns one Result per originally-enqueued job (retries are folded
// into their original job's final Result). If remoteServerConfigured is
// true, ReSym-kind jobs use the wider remote concurrency cap.
func (r *Runner) Drain(ctx context.Context, remoteServerConfigured bool) []Result {
	var wg sync.WaitGroup
	resultsCh := make(chan Result, 256)
	var inFlight atomic.Int32
	globalSem := semaphore.NewWeighted(int64(r.maxParallelism))

	var runJob func(j job.Job)
	runJob = func(j job.Job) {
		globalSem.Acquire(ctx, 1)
		sem := r.semFor(j.Kind, remoteServerConfigured)
		sem.Acquire(ctx, 1)
		inFlight.Add(1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			defer globalSem.Release(1)
			defer inFlight.Add(-1)

			success, err := job.Run(ctx, r.cache, j, r.args)
			if err == nil {
				r.recordSuccess(j, success)
				resultsCh <- Result{Job: j, Success: success}
				return
			}
			var fail *job.Fail
			if asFail(err, &fail) && fail.Reason == job.ReasonRetryRequested {
				r.mu.Lock()
				r.Retried++
				r.mu.Unlock()
				r.onMessage(fmt.Sprintf("retrying %v %s (attempt %d)", fail.Job.Kind, fail.Job.Base, fail.Job.RetryCounter))
				// Requeue from a fresh goroutine so this worker's semaphore
				// slots are released first; the extra wg count keeps Drain
				// from finishing before the retry registers itself.
				wg.Add(1)
				go func() {
					defer wg.Done()
					runJob(fail.Job)
				}()
				return
			}
			r.mu.Lock()
			r.Failed++
			r.mu.Unlock()
			r.onMessage(fmt.Sprintf("FAILED: %s", j.ReRunnableCommandLine(r.args.CacheRefreshOnly)))
			resultsCh <- Result{Job: j, Err: err}
		}()
	}

	r.mu.Lock()
	pending := r.queue
	r.queue = nil
	r.mu.Unlock()

	for _, j := range pending {
		if r.quitting.Load() {
			break
		}
		for !r.EnoughRAMForNewProcess(int(inFlight.Load())) {
			time.Sleep(100 * time.Millisecond)
		}
		instant := job.RunWouldBeInstant(r.cache, j, r.args)
		runJob(j)
		if !instant {
			// Give memory accounting one tick to catch up before the next spawn.
			time.Sleep(100 * time.Millisecond)
		}
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	results := make([]Result, 0, len(pending))
	for res := range resultsCh {
		results = append(results, res)
	}
	return results
}

func (r *Runner) recordSuccess(j job.Job, s job.Success) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch s.Via {
	case job.ViaCache:
		r.DoneViaCache++
	case job.ViaSkip:
		r.DoneViaSkip++
	default:
		r.Done++
	}
	if s.Runtime != nil {
		r.TimingStats[timingKey{Kind: j.Kind, Base: j.Base}] = s.Runtime.Seconds()
	}
}

func asFail(err error, out **job.Fail) bool {
	f, ok := err.(*job.Fail)
	if ok {
		*out = f
	}
	return ok
}
