package rules

import "fmt"

// column identifies one of the "why did this fail" CSV columns: a
// (Property, Condition) pair that appeared somewhere in the rule tree.
type column struct {
	Property  Property
	Condition Condition
}

// PropertyConditionsProduct walks root in preorder and returns the
// deduplicated, order-preserving list of (Property, Condition) pairs every
// reachable Rule node checks. This fixes the CSV column order once per
// rule tree, exactly as the original does: the columns are derived from
// the tree shape itself, not hand-maintained.
func PropertyConditionsProduct(root *Rule) []column {
	var out []column
	seen := make(map[column]bool)
	var visit func(r *Rule)
	visit = func(r *Rule) {
		if r == nil {
			return
		}
		col := column{Property: r.Property, Condition: r.Condition}
		if !seen[col] {
			seen[col] = true
			out = append(out, col)
		}
		if r.OnTrue.Action.Kind == ActionSameAsOther {
			panic("rules: OnTrue must never be SameAsOther")
		}
		if r.OnTrue.Action.Kind == ActionContinue {
			visit(r.OnTrue.Action.Next)
		}
		if r.OnFalse.Action.Kind == ActionContinue {
			visit(r.OnFalse.Action.Next)
		}
	}
	visit(root)
	return out
}

// ScoreStats accumulates the outcome of scoring many variables against
// one rule tree.
type ScoreStats struct {
	root    *Rule
	columns []column

	Score          float64
	DomainSize     int
	FailureReasons map[column]uint64
}

// NewScoreStats prepares stats for scoring against root, deriving the CSV
// column set once up front.
func NewScoreStats(root *Rule) *ScoreStats {
	return &ScoreStats{
		root:           root,
		columns:        PropertyConditionsProduct(root),
		FailureReasons: make(map[column]uint64),
	}
}

// AvgScore returns the mean score across every variable scored so far, or
// 0 if none have been scored.
func (s *ScoreStats) AvgScore() float64 {
	if s.DomainSize == 0 {
		return 0
	}
	return s.Score / float64(s.DomainSize)
}

// ComputeOne scores one variable's Input against stats' rule tree,
// accumulating into Score/DomainSize/FailureReasons, and returns the
// per-variable score (the sum of every Branch.Delta credited along the
// path taken) plus a human-readable trace of the path.
func ComputeOne(stats *ScoreStats, in Input) (score float64, trace string) {
	score, trace = computeInternal(stats.root, stats.root, in, stats)
	stats.Score += score
	stats.DomainSize++
	return score, trace
}

// computeInternal evaluates rule against in, recursing through
// Continue/SameAsOther/ReRunOnRecursivePointee actions, and returns the
// score contribution of this subtree plus an accumulated human-readable
// trace. top is the tree root, needed by ReRunOnRecursivePointee to
// restart evaluation from the top on the dereferenced pair.
func computeInternal(rule *Rule, top *Rule, in Input, stats *ScoreStats) (float64, string) {
	var success bool
	var testVal, gtVal Value

	if rule.Property == PropIsDefined {
		// IsDefined is the one property evaluated over the candidate's
		// *optionality*, not its structural value, so it must run even
		// when the candidate side has no index at all.
		testVal = valueBool(in.HasTest())
		gtVal = valueBool(true)
	} else {
		if !in.HasTest() {
			panic("rules: property evaluated with no candidate index; IsDefined should have halted first")
		}
		testVal = Eval(rule.Property, in.Containers.Test, *in.Indices.Test)
		gtVal = Eval(rule.Property, in.Containers.GT, *in.Indices.GT)
	}

	switch rule.Condition {
	case CondBothAreTrue:
		if testVal.Kind != ValueBool || gtVal.Kind != ValueBool {
			panic(fmt.Sprintf("rules: BothAreTrue used on non-bool property %v", rule.Property))
		}
		if testVal.Bool != gtVal.Bool {
			panic(fmt.Sprintf("rules: BothAreTrue on %v must be gated behind a prior BothAgree check on the same property (got test=%v gt=%v)", rule.Property, testVal.Bool, gtVal.Bool))
		}
		success = testVal.Bool
	case CondBothAgree:
		success = testVal.Equal(gtVal)
	default:
		panic(fmt.Sprintf("rules: unhandled condition %v", rule.Condition))
	}

	branch := rule.OnFalse
	mark := "!"
	if success {
		branch = rule.OnTrue
		mark = " "
	}
	trace := fmt.Sprintf("%s%v-%v(%v vs %v)", mark, rule.Property, rule.Condition, testVal, gtVal)
	score := branch.Delta

	switch branch.Action.Kind {
	case ActionHalt:
		if !success {
			col := column{Property: rule.Property, Condition: rule.Condition}
			stats.FailureReasons[col]++
		}
		return score, trace

	case ActionContinue:
		childScore, childTrace := computeInternal(branch.Action.Next, top, in, stats)
		return score + childScore, trace + "; " + childTrace

	case ActionSameAsOther:
		if success {
			panic("rules: SameAsOther reached on a true condition")
		}
		other := rule.OnTrue.Action
		if other.Kind != ActionContinue {
			panic("rules: SameAsOther requires OnTrue to be Continue")
		}
		childScore, childTrace := computeInternal(other.Next, top, in, stats)
		return score + childScore, trace + "; " + childTrace

	case ActionReRunOnRecursivePointee:
		if in.RecursionBudget <= 0 {
			return score, trace + "; recursion budget exhausted"
		}
		nextIn := in.RecursivePointee()
		if nextIn.SeenBefore() {
			return score, trace + "; cycle closed, halting"
		}
		childScore, childTrace := computeInternal(top, top, nextIn, stats)
		return score + childScore, trace + "; recursed into pointee: " + childTrace

	default:
		panic(fmt.Sprintf("rules: unhandled action kind %v", branch.Action.Kind))
	}
}
