package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftahirops/trexrunner/internal/cache"
	"github.com/ftahirops/trexrunner/internal/job"
)

type fakeRAM struct {
	total, available uint64
}

func (f fakeRAM) Read() (uint64, uint64, error) { return f.total, f.available, nil }

func TestEnoughRAMForNewProcess(t *testing.T) {
	r := New(cache.New(t.TempDir()), job.RunArgs{}, 4)

	r.ramReader = fakeRAM{total: 100, available: 60}
	if !r.EnoughRAMForNewProcess(1) {
		t.Fatal("expected enough RAM at 60% available with active workers")
	}

	r.ramReader = fakeRAM{total: 100, available: 10}
	if r.EnoughRAMForNewProcess(1) {
		t.Fatal("expected not enough RAM at 10% available with active workers")
	}
	if !r.EnoughRAMForNewProcess(0) {
		t.Fatal("expected the roll-the-dice escape hatch to allow a first job regardless of RAM")
	}
}

func TestDrainRunsConfirmBasicPreRequisites(t *testing.T) {
	dir := t.TempDir()
	c := cache.New(filepath.Join(dir, ".runner-cache"))
	r := New(c, job.RunArgs{}, 2)
	r.Enqueue(job.Job{Kind: job.ConfirmBasicPreRequisites, Base: dir})

	// ConfirmBasicPreRequisites has no inputs/outputs to check, but it
	// does try to exec `just confirm-basic-pre-requisites`, which won't
	// exist in the test environment; assert only that Drain terminates
	// and reports exactly one result either way.
	results := r.Drain(context.Background(), false)
	if len(results) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(results))
	}
}

func TestWriteTimingCSV(t *testing.T) {
	r := New(cache.New(t.TempDir()), job.RunArgs{}, 1)
	r.TimingStats[timingKey{Kind: job.LiftPCode, Base: "prog1"}] = 12.5

	path := filepath.Join(t.TempDir(), "timing.csv")
	if err := r.WriteTimingCSV(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty timing CSV")
	}
}
