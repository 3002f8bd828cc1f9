// Command scorer compares a candidate tool's reconstructed structural
// types against a ground truth, using the partial-credit rule engine in
// internal/rules, and reports a CSV summary. Grounded directly on
// original_source/metrics/scorer/src/main.rs's Args/main.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ftahirops/trexrunner/internal/evaluator"
	"github.com/ftahirops/trexrunner/internal/rules"
	"github.com/ftahirops/trexrunner/internal/stypes"
)

func main() {
	groundTruth := flag.String("ground-truth", "", "path to ground truth structural types file, produced by types2st (required)")
	gtVars := flag.String("gt-vars", "", "path to ground truth var map")
	test := flag.String("test", "", "path to structural types file under test, produced by the tool being measured (required)")
	testVars := flag.String("test-vars", "", "path to var map for --test")
	outputCSV := flag.String("output-csv", "", "write the summary CSV here instead of stdout")
	outputFinerGrainedCSV := flag.String("output-finer-grained-csv", "", "write a per-variable CSV here")
	enableGenerousEval := flag.Bool("enable-generous-eval", false, "let a tool that produced no type for a variable be penalized as if it had produced a placeholder, rather than as an outright miss")
	flag.Parse()

	if *groundTruth == "" || *test == "" {
		fmt.Fprintln(os.Stderr, "scorer: -ground-truth and -test are required")
		os.Exit(1)
	}

	gt, err := stypes.LoadFile(*groundTruth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scorer: reading ground truth: %v\n", err)
		os.Exit(1)
	}
	testData, err := stypes.LoadFile(*test)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scorer: reading test data: %v\n", err)
		os.Exit(1)
	}

	var gtVarsToTestVars map[string]string
	if *gtVars != "" {
		if *testVars == "" {
			fmt.Fprintln(os.Stderr, "scorer: -test-vars is required when -gt-vars is given")
			os.Exit(1)
		}
		gtVarMap, err := loadVars(*gtVars)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scorer: %v\n", err)
			os.Exit(1)
		}
		testVarMap, err := loadVars(*testVars)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scorer: %v\n", err)
			os.Exit(1)
		}
		gtVarsToTestVars = stypes.GTVarsToTestVars(gtVarMap, testVarMap)
	}

	stats, rows := evaluator.Evaluate(rules.DefaultRules, gt, testData, gtVarsToTestVars, evaluator.Options{
		GenerousEval: *enableGenerousEval,
	})

	program := baseFileName(*groundTruth)
	if *outputCSV == "" {
		fmt.Println("Program," + stats.CSVHeadings())
		fmt.Printf("%q,%s\n", program, stats.ToCSV())
	} else if err := stats.WriteToOrUpdateCSV(*outputCSV, program); err != nil {
		fmt.Fprintf(os.Stderr, "scorer: writing summary CSV: %v\n", err)
		os.Exit(1)
	}

	if *outputFinerGrainedCSV != "" {
		if err := os.WriteFile(*outputFinerGrainedCSV, []byte(evaluator.FinerGrainedCSV(rows)), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "scorer: writing finer-grained CSV: %v\n", err)
			os.Exit(1)
		}
	}
}

func loadVars(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading var map %q: %w", path, err)
	}
	return stypes.ParseVars(string(data))
}

func baseFileName(path string) string {
	base := path
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			base = base[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}
