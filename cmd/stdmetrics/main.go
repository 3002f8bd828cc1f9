// Command stdmetrics computes the standardized, all-or-nothing type
// equality metrics (true/false positive/negative counts by canonicalized
// C-type string comparison) for one or more candidate tools against a
// shared ground truth. Grounded directly on
// original_source/metrics/standardized-scoring/src/main.rs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ftahirops/trexrunner/internal/evaluator"
	"github.com/ftahirops/trexrunner/internal/stypes"
)

type toolFlag struct {
	name string
	path string
}

type toolFlags []toolFlag

func (t *toolFlags) String() string { return "" }

func (t *toolFlags) Set(v string) error {
	idx := -1
	for i, r := range v {
		if r == '=' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("stdmetrics: -tool must be NAME=PATH, got %q", v)
	}
	*t = append(*t, toolFlag{name: v[:idx], path: v[idx+1:]})
	return nil
}

func main() {
	groundTruth := flag.String("ground-truth", "", "path to ground truth structural types file (required)")
	outputCSV := flag.String("output-csv", "", "write the tool,total,tp,fp,fn CSV here instead of stdout")
	var tools toolFlags
	flag.Var(&tools, "tool", "NAME=PATH to a candidate tool's structural types file; repeatable")
	flag.Parse()

	if *groundTruth == "" || len(tools) == 0 {
		fmt.Fprintln(os.Stderr, "stdmetrics: -ground-truth and at least one -tool are required")
		os.Exit(1)
	}

	gt, err := stypes.LoadFile(*groundTruth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stdmetrics: reading ground truth: %v\n", err)
		os.Exit(1)
	}

	var out string
	out += "\"Tool\",\"Total\",\"TruePositive\",\"FalsePositive\",\"FalseNegative\"\n"
	for _, t := range tools {
		test, err := stypes.LoadFile(t.path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stdmetrics: reading %s: %v\n", t.path, err)
			os.Exit(1)
		}
		stats := evaluator.AnalyzeTestData(t.name, gt, test)
		out += stats.CSVRow() + "\n"
	}

	if *outputCSV == "" {
		fmt.Print(out)
		return
	}
	if err := os.WriteFile(*outputCSV, []byte(out), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "stdmetrics: writing %s: %v\n", *outputCSV, err)
		os.Exit(1)
	}
}
