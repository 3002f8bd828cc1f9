package evaluator

import (
	"testing"

	"github.com/ftahirops/trexrunner/internal/rules"
	"github.com/ftahirops/trexrunner/internal/stypes"
)

func TestEvaluateExactMatch(t *testing.T) {
	gt := stypes.NewContainer()
	idx := gt.Insert(stypes.StructuralType{Kind: stypes.KindPrimitive, Primitive: "int32_t"})
	gt.SetVar("x", idx)

	test := stypes.NewContainer()
	tidx := test.Insert(stypes.StructuralType{Kind: stypes.KindPrimitive, Primitive: "int32_t"})
	test.SetVar("x", tidx)

	stats, rows := Evaluate(rules.DefaultRules, gt, test, nil, Options{})
	if stats.AvgScore() != 6 {
		t.Fatalf("expected avg score 6, got %v", stats.AvgScore())
	}
	if len(rows) != 1 || rows[0].Variable != "x" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestEvaluateGenerousModeSynthesizesPlaceholder(t *testing.T) {
	gt := stypes.NewContainer()
	idx := gt.Insert(stypes.StructuralType{Kind: stypes.KindPrimitive, Primitive: "int32_t"})
	gt.SetVar("x", idx)

	test := stypes.NewContainer()

	statsStrict, _ := Evaluate(rules.DefaultRules, gt, test, nil, Options{GenerousEval: false})
	if statsStrict.FailedDueTo(rules.PropIsDefined, rules.CondBothAgree) != 1 {
		t.Fatalf("expected a miss recorded under strict evaluation")
	}

	statsGenerous, _ := Evaluate(rules.DefaultRules, gt, test, nil, Options{GenerousEval: true})
	if statsGenerous.FailedDueTo(rules.PropIsDefined, rules.CondBothAgree) != 0 {
		t.Fatalf("generous eval should synthesize a defined placeholder, avoiding the IsDefined miss")
	}
}

func TestAnalyzeTestDataStandardizedMetrics(t *testing.T) {
	gt := stypes.NewContainer()
	s1 := gt.Insert(stypes.StructuralType{Kind: stypes.KindPrimitive, Primitive: "int32_t"})
	gt.SetVar("a", s1)
	s2 := gt.Insert(stypes.StructuralType{Kind: stypes.KindPrimitive, Primitive: "int32_t"})
	gt.SetVar("b", s2)

	test := stypes.NewContainer()
	t1 := test.Insert(stypes.StructuralType{Kind: stypes.KindPrimitive, Primitive: "int32_t"})
	test.SetVar("a", t1)
	// "b" is missing entirely from the candidate.

	stats := AnalyzeTestData("mytool", gt, test)
	if stats.TruePositive != 1 || stats.FalseNegative != 1 || stats.FalsePositive != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Total != 2 {
		t.Fatalf("expected total 2, got %d", stats.Total)
	}
}
