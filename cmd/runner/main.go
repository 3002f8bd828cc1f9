// Command runner drives the job DAG against a benchmark's evalfiles
// directory: either a single job in isolation (`single-job`) or every
// job of a given kind across the whole benchmark (`jobs-for-benchmark`).
// With no subcommand it falls back to an interactive picker. Grounded
// directly on original_source/utils/runner/src/main.rs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ftahirops/trexrunner/internal/cache"
	"github.com/ftahirops/trexrunner/internal/config"
	"github.com/ftahirops/trexrunner/internal/job"
	"github.com/ftahirops/trexrunner/internal/runner"
)

func main() {
	if len(os.Args) < 2 {
		runInteractive()
		return
	}

	switch os.Args[1] {
	case "single-job":
		runSingleJob(os.Args[2:])
	case "jobs-for-benchmark":
		runJobsForBenchmark(os.Args[2:])
	default:
		runInteractive()
	}
}

func newRunArgs(fs *flag.FlagSet) (*job.RunArgs, func()) {
	args := &job.RunArgs{}
	fs.BoolVar(&args.NoTimeout, "no-timeout", false, "don't wrap the job in a wall-clock timeout")
	fs.BoolVar(&args.NoMemLimit, "no-mem-limit", false, "don't cap the job's memory via systemd-run")
	fs.BoolVar(&args.SkipCacheRead, "skip-cache-read", false, "always run, ignoring any cached result")
	fs.BoolVar(&args.CacheRefreshOnly, "cache-refresh-only", false, "assume outputs already exist on disk and just populate the cache from them")
	fs.BoolVar(&args.ForceRunEvenIfSkipped, "force", false, "run even if the job is in the skip list")
	printCmd, _ := config.PrintJobCommand()
	args.PrintCommand = printCmd
	return args, func() {}
}

func runSingleJob(argv []string) {
	fs := flag.NewFlagSet("single-job", flag.ExitOnError)
	kindName := fs.String("job", "", "job kind to run (required)")
	base := fs.String("base", "", "base path to run it against (required)")
	cacheDir := fs.String("cache-dir", cache.Dir, "cache root directory")
	args, cleanup := newRunArgs(fs)
	fs.Parse(argv)
	defer cleanup()

	if *kindName == "" || *base == "" {
		fmt.Fprintln(os.Stderr, "runner: -job and -base are required")
		os.Exit(1)
	}
	kind, err := job.ParseKind(*kindName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runner: %v\n", err)
		os.Exit(1)
	}

	ctx := cancelOnSignal()
	c := cache.New(*cacheDir)
	success, err := runner.RunOne(ctx, c, job.Job{Kind: kind, Base: *base}, *args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runner: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("runner: %v %s succeeded via %v\n", kind, *base, success.Via)
}

func runJobsForBenchmark(argv []string) {
	fs := flag.NewFlagSet("jobs-for-benchmark", flag.ExitOnError)
	kindName := fs.String("job", "", "job kind to run across the benchmark (required)")
	benchmarkDir := fs.String("benchmark-dir", "", "path to the benchmark's evalfiles directory (required)")
	cacheDir := fs.String("cache-dir", cache.Dir, "cache root directory")
	parallelism := fs.Int("parallelism", 0, "max concurrent jobs (0 = use the configured default)")
	timingCSV := fs.String("timing-csv", "", "write a per-job timing CSV here when done")
	args, cleanup := newRunArgs(fs)
	fs.Parse(argv)
	defer cleanup()

	if *kindName == "" || *benchmarkDir == "" {
		fmt.Fprintln(os.Stderr, "runner: -job and -benchmark-dir are required")
		os.Exit(1)
	}
	kind, err := job.ParseKind(*kindName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runner: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load()
	n := *parallelism
	if n <= 0 {
		n = cfg.DefaultParallelism
	}

	bases, err := job.JobsAt(*benchmarkDir, kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runner: %v\n", err)
		os.Exit(1)
	}

	ctx := cancelOnSignal()
	c := cache.New(*cacheDir)
	r := runner.New(c, *args, n)
	for _, base := range bases {
		r.Enqueue(job.Job{Kind: kind, Base: base})
	}

	view := runner.NewProgressView(r, len(bases))
	start := time.Now()
	results := view.Run(func() []runner.Result { return r.Drain(ctx, config.RemoteServer() != "") }, r)

	fmt.Println(r.HumanSummary(time.Since(start).Seconds()))
	if *timingCSV != "" {
		if err := r.WriteTimingCSV(*timingCSV); err != nil {
			fmt.Fprintf(os.Stderr, "runner: writing timing CSV: %v\n", err)
		}
	}

	for _, res := range results {
		if res.Err != nil {
			os.Exit(1)
		}
	}
}

// runInteractive is the no-subcommand fallback: pick a benchmark
// directory and a job kind via the bubbletea picker, then run that job
// kind across the whole benchmark. Grounded on main.rs's ArgCommand::None
// branch (dialoguer choose_one_from/confirm).
func runInteractive() {
	repoRoot, err := findRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "runner: %v\n", err)
		os.Exit(1)
	}

	benchmarks, err := discoverBenchmarks(repoRoot)
	if err != nil || len(benchmarks) == 0 {
		fmt.Fprintln(os.Stderr, "runner: no benchmark evalfiles directories found under the repo root")
		os.Exit(1)
	}
	benchmark, ok := runner.Choose("Choose a benchmark", benchmarks)
	if !ok {
		fmt.Fprintln(os.Stderr, "runner: canceled")
		os.Exit(1)
	}

	kindNames := make([]string, len(job.AllKinds))
	for i, k := range job.AllKinds {
		kindNames[i] = k.String()
	}
	kindName, ok := runner.Choose("Choose a job kind", kindNames)
	if !ok {
		fmt.Fprintln(os.Stderr, "runner: canceled")
		os.Exit(1)
	}
	kind, err := job.ParseKind(kindName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runner: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("runner jobs-for-benchmark -job %s -benchmark-dir %s\n", kind.String(), benchmark)
	runJobsForBenchmark([]string{
		"-job", kind.String(),
		"-benchmark-dir", benchmark,
	})
}

// potentialRepoRoots are the sentinel directory names this tool's own
// benchmark layout is expected to live under, mirroring main.rs's
// POTENTIAL_REPO_ROOTS walk-up search.
var potentialRepoRoots = []string{"trexrunner", "trex"}

func findRepoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		for _, name := range potentialRepoRoots {
			if filepath.Base(dir) == name {
				return dir, nil
			}
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find repo root (no go.mod found walking up from cwd)")
		}
		dir = parent
	}
}

func discoverBenchmarks(repoRoot string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(repoRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && d.Name() == "evalfiles" {
			out = append(out, path)
			return filepath.SkipDir
		}
		return nil
	})
	return out, err
}

func cancelOnSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()
	return ctx
}
