// Package rules implements the declarative rule-tree scoring engine: a
// tree of Rule nodes, each checking one Property of a candidate type
// against the matching ground-truth type, compared under one Condition,
// and proceeding to a child Rule (or halting) based on the outcome.
// Grounded directly on original_source/metrics/scorer/src/dsl.rs.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ftahirops/trexrunner/internal/pointerutil"
	"github.com/ftahirops/trexrunner/internal/stypes"
)

// Property names one structural fact evaluated independently for the
// candidate and ground-truth type at a given position. The set and order
// mirror dsl.rs's Property enum exactly.
type Property int

const (
	PropIsDefined Property = iota
	PropIsCPointer
	PropCPointerLevel
	PropIsSTPointer
	PropSTPointerLevel
	PropSize
	PropIsCStruct
	PropSignIgnoredCPrimitive
	PropCPrimitive
)

func (p Property) String() string {
	switch p {
	case PropIsDefined:
		return "IsDefined"
	case PropIsCPointer:
		return "IsCPointer"
	case PropCPointerLevel:
		return "CPointerLevel"
	case PropIsSTPointer:
		return "IsSTPointer"
	case PropSTPointerLevel:
		return "STPointerLevel"
	case PropSize:
		return "Size"
	case PropIsCStruct:
		return "IsCStruct"
	case PropSignIgnoredCPrimitive:
		return "SignIgnoredCPrimitive"
	case PropCPrimitive:
		return "CPrimitive"
	default:
		return fmt.Sprintf("Property(%d)", int(p))
	}
}

// Condition compares the candidate's and ground-truth's evaluated Values.
type Condition int

const (
	// CondBothAgree requires the two evaluated Values to be equal.
	CondBothAgree Condition = iota
	// CondBothAreTrue requires both sides to evaluate to Value{Bool: true};
	// a false/true split is a program error (must be gated behind a prior
	// BothAgree check on the same property).
	CondBothAreTrue
)

func (c Condition) String() string {
	if c == CondBothAgree {
		return "BothAgree"
	}
	return "BothAreTrue"
}

// ValueKind distinguishes which field of Value is populated.
type ValueKind int

const (
	ValueBool ValueKind = iota
	ValueResU32U32
	ValueOptAggrSize
	ValueSetOfStr
)

// Value is the tagged result of evaluating a Property against one side
// (candidate or ground truth) of an Input.
type Value struct {
	Kind ValueKind

	Bool bool

	// ResU32U32 mirrors the original's Result<u32,u32>: Depth is the
	// pointer-chain length, Terminated reports whether the chain ended at
	// a non-pointer (true) or closed a cycle (false, in which case Depth
	// is the level at which the cycle closed).
	Depth      uint32
	Terminated bool

	OptAggrSize int
	HasAggrSize bool

	SetOfStr []string
}

func valueBool(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

func valueResU32U32(depth uint32, terminated bool) Value {
	return Value{Kind: ValueResU32U32, Depth: depth, Terminated: terminated}
}

func valueOptAggrSize(size int, has bool) Value {
	return Value{Kind: ValueOptAggrSize, OptAggrSize: size, HasAggrSize: has}
}

func valueSetOfStr(s []string) Value {
	sorted := append([]string(nil), s...)
	sort.Strings(sorted)
	return Value{Kind: ValueSetOfStr, SetOfStr: sorted}
}

func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueBool:
		return v.Bool == o.Bool
	case ValueResU32U32:
		return v.Depth == o.Depth && v.Terminated == o.Terminated
	case ValueOptAggrSize:
		return v.HasAggrSize == o.HasAggrSize && (!v.HasAggrSize || v.OptAggrSize == o.OptAggrSize)
	case ValueSetOfStr:
		if len(v.SetOfStr) != len(o.SetOfStr) {
			return false
		}
		for i := range v.SetOfStr {
			if v.SetOfStr[i] != o.SetOfStr[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case ValueBool:
		return fmt.Sprintf("%v", v.Bool)
	case ValueResU32U32:
		if v.Terminated {
			return fmt.Sprintf("Ok(%d)", v.Depth)
		}
		return fmt.Sprintf("Err(%d)", v.Depth)
	case ValueOptAggrSize:
		if !v.HasAggrSize {
			return "None"
		}
		return fmt.Sprintf("Some(%d)", v.OptAggrSize)
	case ValueSetOfStr:
		return "{" + strings.Join(v.SetOfStr, ",") + "}"
	default:
		return "?"
	}
}

// cPrimitiveKind classifies a type node the way Ghidra-flavored C output
// does: pointers and structs are reported by shape alone, and everything
// else resolves to its normalized primitive name (or "padding*"/"undefinedN"
// passthrough for sized-but-opaque blobs).
func cPrimitiveKind(c *stypes.Container, idx stypes.Index, signIgnored bool) []string {
	t := c.Get(idx)
	switch t.Kind {
	case stypes.KindPointer:
		return []string{"pointer"}
	case stypes.KindStruct, stypes.KindUnion:
		return []string{"struct"}
	case stypes.KindUndefined:
		return []string{"undefined"}
	case stypes.KindPrimitive:
		name := t.Primitive
		if strings.HasPrefix(name, "undefined") || strings.HasPrefix(name, "padding") {
			return []string{name}
		}
		if signIgnored {
			normalized, ok := signNormalizedCPrimitives(name)
			if !ok {
				panic(fmt.Sprintf("rules: unrecognized primitive name %q", name))
			}
			return normalized
		}
		return []string{name}
	default:
		panic(fmt.Sprintf("rules: unrecognized type kind %v", t.Kind))
	}
}

// signNormalizedCPrimitives collapses sign-distinguished integer primitive
// names into a signedness-agnostic set, e.g. "int32_t"/"uint32_t" both
// normalize to the same bucket. Numeric size-only blobs (undefinedN) and
// non-integer primitives (float/double/bool/code) pass through unchanged.
func signNormalizedCPrimitives(name string) ([]string, bool) {
	table := map[string]string{
		"int8_t": "i8", "uint8_t": "i8",
		"int16_t": "i16", "uint16_t": "i16",
		"int32_t": "i32", "uint32_t": "i32",
		"int64_t": "i64", "uint64_t": "i64",
		"float":  "float",
		"double": "double",
		"bool":   "bool",
		"code":   "code",
	}
	if v, ok := table[name]; ok {
		return []string{v}, true
	}
	return nil, false
}

// Eval evaluates p against the node at idx in c.
func Eval(p Property, c *stypes.Container, idx stypes.Index) Value {
	t := c.Get(idx)
	switch p {
	case PropIsDefined:
		// Unreachable in practice: computeInternal special-cases IsDefined
		// so it can evaluate the optionality of the candidate's index
		// (which this function, given a concrete idx, cannot observe).
		return valueBool(true)
	case PropIsCPointer:
		return valueBool(pointerutil.IsPointer(c, idx, pointerutil.StructMayBePointerNo))
	case PropCPointerLevel:
		depth, terminated := pointerutil.PointerLevel(c, idx, pointerutil.StructMayBePointerNo)
		return valueResU32U32(depth, terminated)
	case PropIsSTPointer:
		return valueBool(pointerutil.IsPointer(c, idx, pointerutil.StructMayBePointerYes))
	case PropSTPointerLevel:
		depth, terminated := pointerutil.PointerLevel(c, idx, pointerutil.StructMayBePointerYes)
		return valueResU32U32(depth, terminated)
	case PropSize:
		size := stypes.AggregateSize(c, idx)
		return valueOptAggrSize(size, true)
	case PropIsCStruct:
		return valueBool(t.Kind == stypes.KindStruct || t.Kind == stypes.KindUnion)
	case PropCPrimitive:
		return valueSetOfStr(cPrimitiveKind(c, idx, false))
	case PropSignIgnoredCPrimitive:
		return valueSetOfStr(cPrimitiveKind(c, idx, true))
	default:
		panic(fmt.Sprintf("rules: unhandled property %v", p))
	}
}

// ActionKind distinguishes what a Rule does once its condition has been
// checked.
type ActionKind int

const (
	ActionHalt ActionKind = iota
	ActionContinue
	ActionSameAsOther
	ActionReRunOnRecursivePointee
)

// Action is what happens after a Rule's condition evaluates, once its
// Branch's score Delta has already been credited.
type Action struct {
	Kind ActionKind
	// Next is used by ActionContinue: the child rule to recurse into.
	Next *Rule
}

func Halt() Action                    { return Action{Kind: ActionHalt} }
func Continue(r *Rule) Action         { return Action{Kind: ActionContinue, Next: r} }
func SameAsOther() Action             { return Action{Kind: ActionSameAsOther} }
func ReRunOnRecursivePointee() Action { return Action{Kind: ActionReRunOnRecursivePointee} }

// Branch is one of a Rule's two outcomes: a score delta (non-negative on
// the true branch, non-positive on the false branch, per invariant) and
// the action to take next.
type Branch struct {
	Delta  float64
	Action Action
}

// T builds an if_true branch. delta must be >= 0.
func T(delta float64, a Action) Branch { return Branch{Delta: delta, Action: a} }

// F builds an if_false branch. delta must be <= 0.
func F(delta float64, a Action) Branch { return Branch{Delta: delta, Action: a} }

// Rule is one node of the scoring tree: check Property under Condition,
// then take OnTrue or OnFalse depending on whether the check held.
type Rule struct {
	Name      string
	Property  Property
	Condition Condition
	// OnTrue/OnFalse are keyed to whether the Condition held. OnTrue's
	// Action must never be ActionSameAsOther.
	OnTrue  Branch
	OnFalse Branch
}
