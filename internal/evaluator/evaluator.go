// Package evaluator implements the harness that drives the rule engine
// over a whole program: aligning ground-truth variables to a candidate
// tool's own naming, filtering Ghidra's "gave up" marker, and optionally
// synthesizing a placeholder type for variables a candidate never
// produced anything for at all. Grounded on
// original_source/metrics/scorer/src/main.rs's evaluation loop.
package evaluator

import (
	"fmt"

	"github.com/ftahirops/trexrunner/internal/rules"
	"github.com/ftahirops/trexrunner/internal/stypes"
)

// Options configures one evaluation run.
type Options struct {
	// GenerousEval lets a candidate that produced no type at all for a
	// variable be penalized as if it had produced a default placeholder
	// type, rather than as an outright miss.
	GenerousEval bool
}

// Row is one variable's contribution to the finer-grained per-variable
// CSV output.
type Row struct {
	Variable string
	Score    float64
	Reason   string
}

// Evaluate scores every ground-truth variable against its mapped
// candidate type, accumulating stats and one Row per variable.
func Evaluate(root *rules.Rule, gt, test *stypes.Container, gtVarsToTestVars map[string]string, opts Options) (*rules.ScoreStats, []Row) {
	stats := rules.NewScoreStats(root)
	rows := make([]Row, 0, len(gt.VarTypeIter()))

	for _, vt := range gt.VarTypeIter() {
		candidateVar := stypes.Lookup(gtVarsToTestVars, vt.Var)
		tdoi, ok := test.IndexOfTypeFor(candidateVar)
		if ok && stypes.IsUndefinedPadding(test.Get(tdoi)) {
			// Ghidra has no way to mark "I don't know" distinctly from
			// "I know, and it's the bare undefined placeholder"; treat
			// that placeholder the same as "nothing produced".
			ok = false
		}
		if !ok && opts.GenerousEval {
			tdoi = test.Insert(stypes.Default())
			ok = true
		}

		var testIdxPtr *stypes.Index
		if ok {
			testIdxPtr = &tdoi
		}
		in := rules.NewInput(rules.TestGTPair[*stypes.Container]{Test: test, GT: gt}, testIdxPtr, vt.Index)
		score, trace := rules.ComputeOne(stats, in)
		rows = append(rows, Row{Variable: vt.Var, Score: score, Reason: trace})
	}

	return stats, rows
}

// FinerGrainedCSV renders rows as the "Variable,Score,Reason" CSV the
// scorer CLI writes when --output-finer-grained-csv is given.
func FinerGrainedCSV(rows []Row) string {
	out := "Variable,Score,Reason\n"
	for _, r := range rows {
		out += fmt.Sprintf("%q,%v,%q\n", r.Variable, r.Score, r.Reason)
	}
	return out
}
