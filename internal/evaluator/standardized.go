package evaluator

import (
	"strconv"

	"github.com/ftahirops/trexrunner/internal/stypes"
)

// Statistics is the standardized-metrics variant's per-tool tally:
// true/false positives and false negatives against a ground truth,
// counted by comparing canonicalized C-type strings rather than the
// rule engine's partial-credit scoring. Grounded on
// original_source/metrics/standardized-scoring/src/main.rs's
// analyze_test_data.
type Statistics struct {
	Kind            string
	Total           int
	TruePositive    int
	FalsePositive   int
	FalseNegative   int
}

// AnalyzeTestData compares every ground-truth variable's type in gt
// against test's type for the same variable name (no var-map indirection
// in this variant — the standardized-metrics tool compares by shared
// variable name directly), classifying each as a true positive (both
// undefined, or both defined and structurally identical once
// canonicalized), a false positive (both defined but different), or a
// false negative (ground truth defined, candidate missing it).
func AnalyzeTestData(kind string, gt, test *stypes.Container) Statistics {
	stats := Statistics{Kind: kind}

	for _, vt := range gt.VarTypeIter() {
		stats.Total++
		gtDefined := !stypes.IsUndefinedPadding(gt.Get(vt.Index))

		tdoi, ok := test.IndexOfTypeFor(vt.Var)
		if ok && stypes.IsUndefinedPadding(test.Get(tdoi)) {
			ok = false
		}

		switch {
		case !gtDefined && !ok:
			stats.TruePositive++
		case gtDefined && !ok:
			stats.FalseNegative++
		case !gtDefined && ok:
			// Candidate claims a type where ground truth has none: treat
			// as a false positive, same bucket as a wrong-but-defined type.
			stats.FalsePositive++
		default:
			gtClone := stypes.NewContainer()
			gtRoot := stypes.DeepClone(gtClone, gt, vt.Index)
			testClone := stypes.NewContainer()
			testRoot := stypes.DeepClone(testClone, test, tdoi)

			if stypes.CanonicalCType(gtClone, gtRoot) == stypes.CanonicalCType(testClone, testRoot) {
				stats.TruePositive++
			} else {
				stats.FalsePositive++
			}
		}
	}

	return stats
}

// CSVRow renders one "tool,total,tp,fp,fn" line.
func (s Statistics) CSVRow() string {
	return `"` + s.Kind + `",` +
		strconv.Itoa(s.Total) + "," + strconv.Itoa(s.TruePositive) + "," +
		strconv.Itoa(s.FalsePositive) + "," + strconv.Itoa(s.FalseNegative)
}
