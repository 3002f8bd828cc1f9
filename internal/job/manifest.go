package job

import (
	"fmt"
	"os"
)

// GhidraInstallMarker is the file whose presence indicates a usable
// Ghidra install; several job kinds declare it as a dependency so the
// cache correctly invalidates if the Ghidra version changes.
const GhidraInstallMarker = "/opt/ghidra/Ghidra/application.properties"

// Manifest is the concrete set of paths a job of a given kind reads
// (Inputs), watches for cache invalidation without consuming
// (Dependencies — e.g. a glob over tool source so a rebuild busts the
// cache), and produces (Outputs). Base is the job's base path (a binary
// path with its extension stripped).
type Manifest struct {
	Inputs       []string
	Dependencies []string
	Outputs      []string
}

// w concatenates ext onto base directly (not via a path-extension API),
// matching the original's `w(ext)` helper: appending ".ext" would clobber
// an existing dot in base names like "foo.bin", so this is plain string
// concatenation, not filepath.Ext-aware joining.
func w(base, ext string) string {
	return base + ext
}

// scoreKindParts resolves a scoring Kind (one of the plain or generous
// Score* kinds) to the extension of the candidate-types file it grades
// and the tool name used to build its output file names. Grounded on
// job.rs's per-tool ScoreTRex/ScoreGhidra/ScoreBaselineTrivial/ScoreReSym
// and GenerousScoreTRex/... manifest arms (job.rs:505-542), which each
// name a distinct `-st` input rather than a single parameterized one.
func scoreKindParts(k Kind) (testExt, toolName string, generous bool) {
	switch k {
	case ScoreTRex:
		return ".trex-st", "trex", false
	case ScoreGhidra:
		return ".ghidra-st", "ghidra", false
	case ScoreBaselineTrivial:
		return ".trivial-st", "baselinetrivial", false
	case ScoreReSym:
		return ".resym-st", "resym", false
	case GenerousScoreTRex:
		return ".trex-st", "trex", true
	case GenerousScoreGhidra:
		return ".ghidra-st", "ghidra", true
	case GenerousScoreBaselineTrivial:
		return ".trivial-st", "baselinetrivial", true
	case GenerousScoreReSym:
		return ".resym-st", "resym", true
	default:
		panic(fmt.Sprintf("job: %v is not a scoring kind", k))
	}
}

func scoreOutputExt(toolName string, generous bool) string {
	if generous {
		return ".gen-scores-" + toolName + ".csv"
	}
	return ".scores-" + toolName + ".csv"
}

// InputsDependenciesAndOutputs returns the concrete file manifest for a
// job of kind k operating on base (a binary's path with any archive/file
// extension already stripped). Grounded directly on job.rs's
// Job::inputs_dependencies_and_outputs.
func InputsDependenciesAndOutputs(k Kind, base string) Manifest {
	switch k {
	case ConfirmBasicPreRequisites:
		return Manifest{}

	case DecompressBinary:
		return Manifest{
			Inputs:  []string{w(base, ".binar.xz")},
			Outputs: []string{w(base, ".binar")},
		}

	case StripBinary:
		return Manifest{
			Inputs:  []string{w(base, ".binar")},
			Outputs: []string{w(base, ".stripped-binar")},
		}

	case ExtractGroundTruthStructuralTypes:
		return Manifest{
			Inputs:       []string{w(base, ".binar"), w(base, ".dbg")},
			Dependencies: []string{"utils/types2st/src/**/*.rs"},
			Outputs:      []string{w(base, ".gtst"), w(base, ".gt-vars")},
		}

	case CollectGroundTruthTypes:
		return Manifest{
			Inputs:       []string{w(base, ".binar"), w(base, ".dbg")},
			Dependencies: []string{GhidraInstallMarker},
			Outputs:      []string{w(base, ".gt-collected.json")},
		}

	case LiftPCode:
		return Manifest{
			Inputs:       []string{w(base, ".stripped-binar")},
			Dependencies: []string{GhidraInstallMarker},
			Outputs:      []string{w(base, ".pcode")},
		}

	case ExtractVariables:
		return Manifest{
			Inputs:  []string{w(base, ".stripped-binar")},
			Outputs: []string{w(base, ".vars")},
		}

	case RunTRex:
		return Manifest{
			Inputs:       []string{w(base, ".pcode"), w(base, ".vars")},
			Dependencies: []string{"trex/**/*.rs"},
			Outputs: []string{
				w(base, ".trex-st"), w(base, ".trex-clike"),
				w(base, ".trex-ssa"), w(base, ".trex-log"),
			},
		}

	case RunGhidraPart1:
		return Manifest{
			Inputs:       []string{w(base, ".stripped-binar"), w(base, ".vars")},
			Dependencies: []string{GhidraInstallMarker},
			Outputs:      []string{w(base, ".ghidra-project")},
		}

	case RunGhidraPart2:
		return Manifest{
			Inputs:       []string{w(base, ".ghidra-project"), w(base, ".vars")},
			Dependencies: []string{GhidraInstallMarker},
			Outputs:      []string{w(base, ".ghidra-st")},
		}

	case RunBaselineTrivial:
		return Manifest{
			Inputs:       []string{w(base, ".vars")},
			Dependencies: []string{"tools/baselinetrivial/src/**/*.rs"},
			Outputs:      []string{w(base, ".trivial-st")},
		}

	case DecompilationWithVarInputs:
		return Manifest{
			Inputs:       []string{w(base, ".stripped-binar"), w(base, ".vars")},
			Dependencies: []string{GhidraInstallMarker},
			Outputs:      []string{w(base, ".decomp")},
		}

	case RunReSymPart1:
		return Manifest{
			Inputs:  []string{w(base, ".decomp")},
			Outputs: []string{w(base, ".resym-features")},
		}
	case RunReSymPart2:
		return Manifest{
			Inputs:  []string{w(base, ".resym-features")},
			Outputs: []string{w(base, ".resym-fieldrec")},
		}
	case RunReSymPart3:
		return Manifest{
			Inputs:  []string{w(base, ".resym-fieldrec"), w(base, ".vars")},
			Outputs: []string{w(base, ".resym-prompts")},
		}
	case RunReSymPart4:
		return Manifest{
			Inputs:  []string{w(base, ".resym-prompts")},
			Outputs: []string{w(base, ".resym-fielddecoder-out")},
		}
	case RunReSymPart5:
		return Manifest{
			Inputs:       []string{w(base, ".resym-fielddecoder-out")},
			Dependencies: []string{"tools/evaluating_resym/process_resym_output.py"},
			Outputs:      []string{w(base, ".resym-types")},
		}
	case RunReSymPart6:
		return Manifest{
			Inputs:       []string{w(base, ".resym-types")},
			Dependencies: []string{"trex/**/*.rs", "utils/types2st/**/*.rs"},
			Outputs:      []string{w(base, ".resym-st")},
		}

	case ScoreTRex, ScoreGhidra, ScoreBaselineTrivial, ScoreReSym,
		GenerousScoreTRex, GenerousScoreGhidra, GenerousScoreBaselineTrivial, GenerousScoreReSym:
		testExt, toolName, generous := scoreKindParts(k)
		return Manifest{
			Inputs: []string{
				w(base, ".gtst"), w(base, ".gt-vars"),
				w(base, testExt), w(base, ".vars"),
			},
			Dependencies: []string{
				"cmd/scorer/**/*.go",
				"internal/rules/**/*.go",
				"internal/evaluator/**/*.go",
				"internal/stypes/**/*.go",
			},
			Outputs: []string{w(base, scoreOutputExt(toolName, generous))},
		}

	case ComputeStandardMetrics:
		inputs := []string{
			w(base, ".gtst"),
			w(base, ".trivial-st"),
			w(base, ".ghidra-st"),
			w(base, ".trex-st"),
		}
		if os.Getenv("ENABLE_RESYM") == "1" {
			inputs = append(inputs, w(base, ".resym-st"))
		}
		return Manifest{
			Inputs: inputs,
			Dependencies: []string{
				"cmd/stdmetrics/**/*.go",
				"internal/evaluator/**/*.go",
				"internal/stypes/**/*.go",
			},
			Outputs: []string{w(base, ".stdmetrics.csv")},
		}

	case SummarizeAllMetrics:
		return Manifest{}

	default:
		panic(fmt.Sprintf("job: unhandled kind %v in InputsDependenciesAndOutputs", k))
	}
}
