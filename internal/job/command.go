package job

import (
	"fmt"
	"os"
)

// CommandLine builds the concrete argv for running a job of kind k over
// base directly (ignoring the cache). Grounded on job.rs's
// do_job_ignoring_cache match arms: `just <recipe>` invocations for the
// Ghidra/decompilation/ReSym pipeline stages, `cargo run --bin ...`
// invocations for the external tools this repository only drives (TRex,
// BaselineTrivial), direct binary invocations for this repository's own
// Go tools (scorer, stdmetrics), and a local-vs-remote dispatch for the
// two GPU-bound ReSym stages driven by the REMOTE_SERVER environment
// variable.
func CommandLine(k Kind, base string) ([]string, error) {
	switch k {
	case ConfirmBasicPreRequisites:
		return []string{"just", "confirm-basic-pre-requisites"}, nil

	case DecompressBinary:
		return []string{"unxz", "--force", "--keep", w(base, ".binar.xz")}, nil

	case StripBinary:
		return []string{"llvm-objcopy", "--strip-debug", w(base, ".binar"), w(base, ".stripped-binar")}, nil

	case ExtractGroundTruthStructuralTypes:
		return []string{"just", "extract-ground-truth", base}, nil

	case CollectGroundTruthTypes:
		return []string{"just", "collect-ground-truth-types", base}, nil

	case LiftPCode:
		return []string{"just", "lift-pcode", base}, nil

	case RunTRex:
		return []string{
			"cargo", "run", "--bin", "trex", "--release", "--",
			"--pcode", w(base, ".pcode"),
			"--vars", w(base, ".vars"),
			"--output-st", w(base, ".trex-st"),
			"--output-clike", w(base, ".trex-clike"),
			"--output-ssa", w(base, ".trex-ssa"),
			"--output-log", w(base, ".trex-log"),
		}, nil

	case RunGhidraPart1:
		return []string{"just", "run-ghidra-part1", base}, nil

	case RunGhidraPart2:
		return []string{"just", "run-ghidra-part2", base}, nil

	case RunBaselineTrivial:
		return []string{
			"cargo", "run", "--bin", "baselinetrivial", "--release", "--",
			"--gt-vars", w(base, ".gt-vars"),
			"--output", w(base, ".trivial-st"),
		}, nil

	case DecompilationWithVarInputs:
		return []string{"just", "decompile-with-var-inputs", base}, nil

	case RunReSymPart2, RunReSymPart4:
		if os.Getenv("REMOTE_SERVER") != "" {
			return []string{"just", "run-resym-remote", k.String(), base}, nil
		}
		return []string{"just", "run-resym-local", k.String(), base}, nil

	case RunReSymPart1, RunReSymPart3, RunReSymPart5, RunReSymPart6:
		return []string{"just", "run-resym-local", k.String(), base}, nil

	case ScoreTRex, ScoreGhidra, ScoreBaselineTrivial, ScoreReSym,
		GenerousScoreTRex, GenerousScoreGhidra, GenerousScoreBaselineTrivial, GenerousScoreReSym:
		testExt, toolName, generous := scoreKindParts(k)
		argv := []string{
			"scorer",
			"--ground-truth", w(base, ".gtst"),
			"--gt-vars", w(base, ".gt-vars"),
			"--test", w(base, testExt),
			"--test-vars", w(base, ".vars"),
			"--output-csv", w(base, scoreOutputExt(toolName, generous)),
		}
		if generous {
			argv = append(argv, "--enable-generous-eval")
		}
		return argv, nil

	case ComputeStandardMetrics:
		argv := []string{
			"stdmetrics",
			"--ground-truth", w(base, ".gtst"),
			"--tool", "baselinetrivial=" + w(base, ".trivial-st"),
			"--tool", "ghidra=" + w(base, ".ghidra-st"),
			"--tool", "trex=" + w(base, ".trex-st"),
		}
		if os.Getenv("ENABLE_RESYM") == "1" {
			argv = append(argv, "--tool", "resym="+w(base, ".resym-st"))
		}
		argv = append(argv, "--output-csv", w(base, ".stdmetrics.csv"))
		return argv, nil

	case SummarizeAllMetrics:
		return []string{"just", "summarize-all", base}, nil

	default:
		return nil, fmt.Errorf("job: unhandled kind %v in CommandLine", k)
	}
}
