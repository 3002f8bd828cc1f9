package job

import (
	"os"
	"testing"
)

func TestCanCache(t *testing.T) {
	if ConfirmBasicPreRequisites.CanCache() {
		t.Fatal("ConfirmBasicPreRequisites should not be cacheable")
	}
	if SummarizeAllMetrics.CanCache() {
		t.Fatal("SummarizeAllMetrics should not be cacheable")
	}
	if !LiftPCode.CanCache() {
		t.Fatal("LiftPCode should be cacheable")
	}
}

func TestMaxParallelWithSameKind(t *testing.T) {
	if got := RunReSymPart2.MaxParallelWithSameKind(false); got != 1 {
		t.Fatalf("expected 1 local worker for RunReSymPart2, got %d", got)
	}
	if got := RunReSymPart2.MaxParallelWithSameKind(true); got != 3 {
		t.Fatalf("expected 3 remote workers for RunReSymPart2, got %d", got)
	}
	if got := ScoreGhidra.MaxParallelWithSameKind(false); got < 1<<20 {
		t.Fatalf("expected ScoreGhidra to be effectively unbounded, got %d", got)
	}
}

func TestRunEnabledByDefault(t *testing.T) {
	if RunReSymPart1.RunEnabledByDefault(false) {
		t.Fatal("ReSym stages should be disabled by default")
	}
	if !RunReSymPart1.RunEnabledByDefault(true) {
		t.Fatal("ReSym stages should be enabled when resymEnabled is true")
	}
	if !ScoreGhidra.RunEnabledByDefault(false) {
		t.Fatal("non-ReSym stages should always run by default")
	}
	if ScoreReSym.RunEnabledByDefault(false) {
		t.Fatal("ScoreReSym should be disabled by default")
	}
}

func TestNumberOfRetriesAllowed(t *testing.T) {
	if LiftPCode.NumberOfRetriesAllowed() != 2 {
		t.Fatalf("expected 2 retries for LiftPCode, got %d", LiftPCode.NumberOfRetriesAllowed())
	}
	if ScoreGhidra.NumberOfRetriesAllowed() != 0 {
		t.Fatalf("expected 0 retries for ScoreGhidra, got %d", ScoreGhidra.NumberOfRetriesAllowed())
	}
}

func TestJobsAtRejectsWrongBaseDirName(t *testing.T) {
	if _, err := JobsAt("/tmp/notevalfiles", DecompressBinary); err == nil {
		t.Fatal("expected error for a base dir not named evalfiles")
	}
}

func TestJobsAtPrereqKindReturnsSingleBase(t *testing.T) {
	dir := t.TempDir() + "/evalfiles"
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	bases, err := JobsAt(dir, ConfirmBasicPreRequisites)
	if err != nil {
		t.Fatal(err)
	}
	if len(bases) != 1 || bases[0] != dir {
		t.Fatalf("expected single base %q, got %v", dir, bases)
	}
}
