// Package pointerutil implements pointer-chain traversal and cycle
// detection over a stypes.Container, grounded on the original's
// pointer_utils.rs.
package pointerutil

import "github.com/ftahirops/trexrunner/internal/stypes"

// StructMayBePointer controls whether a struct node is itself treated as
// a pointer for traversal purposes — a historical Ghidra quirk where a
// single-field struct wrapping a pointer is sometimes emitted in place of
// a bare pointer.
type StructMayBePointer bool

const (
	StructMayBePointerNo  StructMayBePointer = false
	StructMayBePointerYes StructMayBePointer = true
)

// IsPointer reports whether the node at idx should be treated as a
// pointer under the given leniency setting.
func IsPointer(c *stypes.Container, idx stypes.Index, flag StructMayBePointer) bool {
	t := c.Get(idx)
	if t.Kind == stypes.KindPointer {
		return true
	}
	if flag == StructMayBePointerYes && t.Kind == stypes.KindStruct && len(t.Fields) == 1 {
		return IsPointer(c, t.Fields[0].Type, flag)
	}
	return false
}

// PointerLevel walks the pointer chain starting at idx, counting how many
// pointer hops occur before reaching a non-pointer node. It returns
// (depth, true) if the walk terminates normally at a non-pointer node, and
// (depth, false) — reporting the depth at which the chain revisits an
// already-seen node — if the chain is cyclic. This mirrors the original's
// Result<u32,u32>, where Ok carries the terminal depth and Err carries the
// depth at which the cycle closes.
func PointerLevel(c *stypes.Container, idx stypes.Index, flag StructMayBePointer) (depth uint32, terminated bool) {
	seen := make(map[stypes.Index]struct{})
	cur := idx
	var level uint32
	for {
		if _, ok := seen[cur]; ok {
			return level, false
		}
		seen[cur] = struct{}{}
		if !IsPointer(c, cur, flag) {
			return level, true
		}
		cur = pointeeOf(c, cur, flag)
		level++
	}
}

// pointeeOf returns the single node a pointer (or, under lenient struct
// matching, a one-field pointer-wrapping struct) dereferences to.
func pointeeOf(c *stypes.Container, idx stypes.Index, flag StructMayBePointer) stypes.Index {
	t := c.Get(idx)
	if t.Kind == stypes.KindPointer {
		return t.Pointee
	}
	// Only reachable when flag == Yes and t is a single-field struct,
	// per IsPointer's contract.
	return pointeeOf(c, t.Fields[0].Type, flag)
}

// PointerLevelUptoRecursion collapses PointerLevel's (depth, terminated)
// pair into a single depth value usable when the caller only cares about
// "how many pointers deep, capped at the point a cycle closes".
func PointerLevelUptoRecursion(c *stypes.Container, idx stypes.Index, flag StructMayBePointer) uint32 {
	depth, _ := PointerLevel(c, idx, flag)
	return depth
}

// RecursivePointee dereferences idx exactly `level` times and returns the
// resulting node index. Panics if flag is StructMayBePointerYes: the
// original leaves this combination unimplemented, since lenient
// struct-as-pointer matching through a recursive rewrite point has no
// agreed-upon semantics yet (see the Open Questions in SPEC_FULL.md).
func RecursivePointee(c *stypes.Container, idx stypes.Index, level uint32, flag StructMayBePointer) stypes.Index {
	if flag == StructMayBePointerYes {
		panic("pointerutil: RecursivePointee with StructMayBePointerYes is not implemented")
	}
	cur := idx
	for i := uint32(0); i < level; i++ {
		t := c.Get(cur)
		if t.Kind != stypes.KindPointer {
			panic("pointerutil: RecursivePointee asked to dereference a non-pointer node")
		}
		cur = t.Pointee
	}
	return cur
}
