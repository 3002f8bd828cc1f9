package rules

import (
	"testing"
	"time"

	"github.com/ftahirops/trexrunner/internal/stypes"
)

func primitiveVar(c *stypes.Container, name, prim string) {
	idx := c.Insert(stypes.StructuralType{Kind: stypes.KindPrimitive, Primitive: prim})
	c.SetVar(name, idx)
}

func newInputFor(gt, test *stypes.Container, varName string) Input {
	gtIdx, _ := gt.IndexOfTypeFor(varName)
	var testIdxPtr *stypes.Index
	if test != nil {
		if idx, ok := test.IndexOfTypeFor(varName); ok {
			testIdxPtr = &idx
		}
	}
	return NewInput(TestGTPair[*stypes.Container]{Test: test, GT: gt}, testIdxPtr, gtIdx)
}

// TestComputeOne_ExactPrimitiveMatch is spec.md §8 scenario 1: an exact
// match earns one credit at every level of the default tree down through
// CPrimitive: IsDefined, IsCPointer(agree), CPointerLevel, IsCStruct,
// SignIgnoredCPrimitive, CPrimitive.
func TestComputeOne_ExactPrimitiveMatch(t *testing.T) {
	gt := stypes.NewContainer()
	test := stypes.NewContainer()
	primitiveVar(gt, "x", "int32_t")
	primitiveVar(test, "x", "int32_t")

	stats := NewScoreStats(DefaultRules)
	score, _ := ComputeOne(stats, newInputFor(gt, test, "x"))
	if score != 6 {
		t.Fatalf("expected exact match score 6, got %v", score)
	}
	if stats.DomainSize != 1 {
		t.Fatalf("expected domain size 1, got %d", stats.DomainSize)
	}
	for col, n := range stats.FailureReasons {
		if n != 0 {
			t.Fatalf("expected no failures on exact match, got %v=%d", col, n)
		}
	}
}

// TestComputeOne_SignednessTolerant is spec.md §8 scenario 4: full credit
// through SignIgnoredCPrimitive, then CPrimitive disagrees on the raw
// (sign-distinguishing) name — exactly one credit below the exact match.
func TestComputeOne_SignednessTolerant(t *testing.T) {
	gt := stypes.NewContainer()
	test := stypes.NewContainer()
	primitiveVar(gt, "x", "int32_t")
	primitiveVar(test, "x", "uint32_t")

	stats := NewScoreStats(DefaultRules)
	score, _ := ComputeOne(stats, newInputFor(gt, test, "x"))
	if score != 5 {
		t.Fatalf("expected signedness-tolerant match score 5, got %v", score)
	}
	if got := stats.FailedDueTo(PropCPrimitive, CondBothAgree); got != 1 {
		t.Fatalf("expected CPrimitive-NotBothAgree=1, got %d", got)
	}
}

// TestComputeOne_MissingCandidate is spec.md §8 scenario 2.
func TestComputeOne_MissingCandidate(t *testing.T) {
	gt := stypes.NewContainer()
	primitiveVar(gt, "x", "int32_t")

	stats := NewScoreStats(DefaultRules)
	score, _ := ComputeOne(stats, newInputFor(gt, nil, "x"))
	if score != 0 {
		t.Fatalf("expected missing-candidate score 0, got %v", score)
	}
	if got := stats.FailedDueTo(PropIsDefined, CondBothAgree); got != 1 {
		t.Fatalf("expected IsDefined-NotBothAgree=1, got %d", got)
	}
}

// TestComputeOne_PointerDepthMismatch is spec.md §8 scenario 3: two
// agreement credits (IsDefined, IsCPointer) then failure at CPointerLevel.
func TestComputeOne_PointerDepthMismatch(t *testing.T) {
	gt := stypes.NewContainer()
	inner := gt.Insert(stypes.StructuralType{Kind: stypes.KindPrimitive, Primitive: "int32_t"})
	mid := gt.Insert(stypes.StructuralType{Kind: stypes.KindPointer, Pointee: inner})
	outer := gt.Insert(stypes.StructuralType{Kind: stypes.KindPointer, Pointee: mid})
	gt.SetVar("x", outer)

	test := stypes.NewContainer()
	tInner := test.Insert(stypes.StructuralType{Kind: stypes.KindPrimitive, Primitive: "int32_t"})
	tOuter := test.Insert(stypes.StructuralType{Kind: stypes.KindPointer, Pointee: tInner})
	test.SetVar("x", tOuter)

	stats := NewScoreStats(DefaultRules)
	score, _ := ComputeOne(stats, newInputFor(gt, test, "x"))
	if score != 2 {
		t.Fatalf("expected pointer-depth mismatch score 2, got %v", score)
	}
	if got := stats.FailedDueTo(PropCPointerLevel, CondBothAgree); got != 1 {
		t.Fatalf("expected CPointerLevel-NotBothAgree=1, got %d", got)
	}
}

// TestComputeOne_PointerVsStructMismatch is spec.md §8 scenario 5.
func TestComputeOne_PointerVsStructMismatch(t *testing.T) {
	gt := stypes.NewContainer()
	s := gt.Insert(stypes.StructuralType{Kind: stypes.KindStruct, Size: 8})
	gt.SetVar("x", s)

	test := stypes.NewContainer()
	inner := test.Insert(stypes.StructuralType{Kind: stypes.KindPrimitive, Primitive: "int32_t"})
	p := test.Insert(stypes.StructuralType{Kind: stypes.KindPointer, Pointee: inner})
	test.SetVar("x", p)

	stats := NewScoreStats(DefaultRules)
	score, _ := ComputeOne(stats, newInputFor(gt, test, "x"))
	if score != 1 {
		t.Fatalf("expected pointer-vs-struct mismatch score 1, got %v", score)
	}
	if got := stats.FailedDueTo(PropIsCPointer, CondBothAgree); got != 1 {
		t.Fatalf("expected IsCPointer-NotBothAgree=1, got %d", got)
	}
}

// TestComputeOne_SelfReferentialCycleTerminates is spec.md §8 scenario 6:
// CPointerLevel returns Err(1) on both sides and agrees, continues, and
// the rerun-on-recursive-pointee chase lands back on the same pair it
// started from — caught by Input's pair-revisit guard rather than
// recursing forever.
func TestComputeOne_SelfReferentialCycleTerminates(t *testing.T) {
	gt := stypes.NewContainer()
	gtNode := gt.Insert(stypes.StructuralType{Kind: stypes.KindPointer})
	gt.SetPointee(gtNode, gtNode)
	gt.SetVar("x", gtNode)

	test := stypes.NewContainer()
	testNode := test.Insert(stypes.StructuralType{Kind: stypes.KindPointer})
	test.SetPointee(testNode, testNode)
	test.SetVar("x", testNode)

	stats := NewScoreStats(DefaultRules)
	done := make(chan float64, 1)
	go func() {
		score, _ := ComputeOne(stats, newInputFor(gt, test, "x"))
		done <- score
	}()
	select {
	case score := <-done:
		if score != 3 {
			t.Fatalf("expected matching self-referential cycles to score 3 (IsDefined+IsCPointer+CPointerLevel), got %v", score)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ComputeOne did not terminate on a self-referential cycle")
	}
}

func TestCSVHeadingsAndRow(t *testing.T) {
	stats := NewScoreStats(DefaultRules)
	gt := stypes.NewContainer()
	primitiveVar(gt, "x", "int32_t")
	ComputeOne(stats, newInputFor(gt, nil, "x"))

	const want = "AvgScore,NumVars,IsDefined-NotBothAgree,IsCPointer-NotBothAgree,CPointerLevel-NotBothAgree,IsCPointer-NotBothAreTrue,IsCStruct-NotBothAgree,SignIgnoredCPrimitive-NotBothAgree,CPrimitive-NotBothAgree"
	if got := stats.CSVHeadings(); got != want {
		t.Fatalf("unexpected CSV header:\n got  %s\n want %s", got, want)
	}
	row := stats.ToCSV()
	if row == "" {
		t.Fatalf("expected non-empty CSV row")
	}
}

func TestCSVHeadingsStableAcrossRuns(t *testing.T) {
	a := NewScoreStats(DefaultRules).CSVHeadings()
	b := NewScoreStats(DefaultRules).CSVHeadings()
	if a != b {
		t.Fatalf("CSV header not stable: %q vs %q", a, b)
	}
}

// Boundary case: an empty domain has avg 0, not NaN or a panic.
func TestScoreStats_EmptyDomainAvgIsZero(t *testing.T) {
	stats := NewScoreStats(DefaultRules)
	if stats.AvgScore() != 0 {
		t.Fatalf("expected avg score 0 for empty domain, got %v", stats.AvgScore())
	}
}
