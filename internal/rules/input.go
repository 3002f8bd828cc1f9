package rules

import "github.com/ftahirops/trexrunner/internal/pointerutil"
import "github.com/ftahirops/trexrunner/internal/stypes"

// TestGTPair holds one value for the candidate ("test") side and one for
// the ground-truth side of a comparison.
type TestGTPair[T any] struct {
	Test T
	GT   T
}

// pairKey identifies one (test, gt) index pair visited while chasing
// ActionReRunOnRecursivePointee, so a closed pointer cycle can be detected
// by revisiting rather than by a bare iteration cap.
type pairKey struct {
	hasTest bool
	test    stypes.Index
	gt      stypes.Index
}

// Input is the position being scored: which two containers to read from,
// and which node index within each (the candidate index may be absent,
// meaning the reconstruction tool produced nothing for this variable).
type Input struct {
	Containers TestGTPair[*stypes.Container]
	Indices    TestGTPair[*stypes.Index]

	// RecursionBudget bounds how many times ActionReRunOnRecursivePointee
	// may re-invoke the rule tree for one variable, as a hard backstop
	// beyond the pair-revisit cycle check below.
	RecursionBudget int

	// visited records every (test, gt) index pair already reached via
	// ActionReRunOnRecursivePointee for this variable. The original's
	// pointer_level already detects a single type's own cyclic chain
	// (Result::Err); this catches the rule-tree-level cycle that forms
	// when two fully recursive types keep re-agreeing on depth and
	// re-triggering the rerun action forever.
	visited map[pairKey]bool
}

const defaultRecursionBudget = 64

// NewInput builds an Input. testIdx may be nil: the candidate has no type
// for this variable at all.
func NewInput(containers TestGTPair[*stypes.Container], testIdx *stypes.Index, gtIdx stypes.Index) Input {
	in := Input{
		Containers:      containers,
		Indices:         TestGTPair[*stypes.Index]{Test: testIdx, GT: &gtIdx},
		RecursionBudget: defaultRecursionBudget,
		visited:         make(map[pairKey]bool),
	}
	in.visited[in.key()] = true
	return in
}

// HasTest reports whether the candidate produced any type for this
// position.
func (in Input) HasTest() bool { return in.Indices.Test != nil }

func (in Input) key() pairKey {
	k := pairKey{hasTest: in.HasTest(), gt: *in.Indices.GT}
	if in.HasTest() {
		k.test = *in.Indices.Test
	}
	return k
}

// RecursivePointee advances both sides of in to their recursive pointee —
// the node reached after following pointer_to exactly as many times as
// each side's own pointer depth requires (pointerutil.PointerLevel),
// mirroring pointer_utils::recursive_pointee. Used by
// ActionReRunOnRecursivePointee to restart the rule tree at the bottom of
// the pointer chain instead of one hop at a time.
func (in Input) RecursivePointee() Input {
	var testIdx *stypes.Index
	if in.Indices.Test != nil {
		depth := pointerutil.PointerLevelUptoRecursion(in.Containers.Test, *in.Indices.Test, pointerutil.StructMayBePointerNo)
		p := pointerutil.RecursivePointee(in.Containers.Test, *in.Indices.Test, depth, pointerutil.StructMayBePointerNo)
		testIdx = &p
	}
	gtDepth := pointerutil.PointerLevelUptoRecursion(in.Containers.GT, *in.Indices.GT, pointerutil.StructMayBePointerNo)
	gtPointee := pointerutil.RecursivePointee(in.Containers.GT, *in.Indices.GT, gtDepth, pointerutil.StructMayBePointerNo)

	return Input{
		Containers:      in.Containers,
		Indices:         TestGTPair[*stypes.Index]{Test: testIdx, GT: &gtPointee},
		RecursionBudget: in.RecursionBudget - 1,
		visited:         in.visited,
	}
}

// SeenBefore reports whether in's (test, gt) index pair has already been
// visited during this variable's scoring, and records it as seen
// otherwise. A true result means the recursive-pointee chase has closed a
// cycle at the rule-tree level.
func (in Input) SeenBefore() bool {
	k := in.key()
	if in.visited[k] {
		return true
	}
	in.visited[k] = true
	return false
}
