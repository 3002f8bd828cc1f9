package runner

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// WriteTimingCSV writes the "JobType","Base","Time (s)" summary CSV for
// a benchmark run, grounded on main.rs's closing BufWriter block.
func (r *Runner) WriteTimingCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, `"JobType","Base","Time (s)"`); err != nil {
		return err
	}

	keys := make([]timingKey, 0, len(r.TimingStats))
	for k := range r.TimingStats {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].Base < keys[j].Base
	})

	for _, k := range keys {
		seconds := r.TimingStats[k]
		if _, err := fmt.Fprintf(f, "%q,%q,%f\n", k.Kind, k.Base, seconds); err != nil {
			return err
		}
	}
	return nil
}

// HumanSummary renders a one-line human-readable summary of a completed
// run's counters and the wall time the caller passes in, using
// github.com/dustin/go-humanize for the job-count formatting.
func (r *Runner) HumanSummary(totalRunSeconds float64) string {
	total := r.Done + r.DoneViaCache + r.DoneViaSkip + r.Failed
	return fmt.Sprintf(
		"%s jobs processed (%d done, %d from cache, %d skipped, %d failed, %d retried) in %s",
		humanize.Comma(int64(total)), r.Done, r.DoneViaCache, r.DoneViaSkip, r.Failed, r.Retried,
		time.Duration(totalRunSeconds*float64(time.Second)).Round(time.Millisecond),
	)
}
