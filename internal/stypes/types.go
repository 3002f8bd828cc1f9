// Package stypes implements a concrete, in-memory structural-type
// container: the data this tool evaluates but does not itself produce.
// Real structural types come from the reconstruction tools under test;
// this package supplies the container shape those tools' output is parsed
// into, and the operations the rule engine and evaluator need from it.
package stypes

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes the shape of a StructuralType node.
type Kind int

const (
	KindUndefined Kind = iota
	KindPrimitive
	KindPointer
	KindStruct
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindPrimitive:
		return "primitive"
	case KindPointer:
		return "pointer"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field is one member of a struct/union node, at a byte offset.
type Field struct {
	Offset int
	Name   string
	Type   Index
}

// StructuralType is one node in the type graph. Pointer and aggregate
// nodes reference other nodes by Index into the owning Container.
type StructuralType struct {
	Kind Kind

	// Primitive: a name such as "int32_t", "uint8_t", "float", "undefined",
	// "undefined4", "code", "bool". Ghidra-style "undefinedN" names stand
	// for an N-byte blob of unknown type; bare "undefined" means "no type
	// known at all" and is treated specially by IsUndefinedPadding.
	Primitive string

	// Pointer: Pointee is the index of the pointed-to node.
	Pointee Index

	// Struct/Union: member fields, offset-ordered.
	Fields []Field
	Size   int
}

// Index is a reference to a node within a Container. The first inserted
// node has index 0; InvalidIndex (-1) marks "no node", and Valid tests
// for it.
type Index int

const InvalidIndex Index = -1

func (i Index) Valid() bool { return i >= 0 }

// Container is a concrete, owned graph of StructuralType nodes, playing
// the role of the opaque StructuralTypes type that real reconstruction
// tools would populate.
type Container struct {
	nodes []StructuralType
	// vars maps a variable name to the index of its type node.
	vars map[string]Index
	// varOrder preserves insertion order for deterministic iteration.
	varOrder []string
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{vars: make(map[string]Index)}
}

// Insert appends a node and returns its index.
func (c *Container) Insert(t StructuralType) Index {
	c.nodes = append(c.nodes, t)
	return Index(len(c.nodes) - 1)
}

// Get returns the node at idx. Panics on an out-of-range index, matching
// the teacher's convention of treating internal graph corruption as a
// program bug rather than a recoverable error.
func (c *Container) Get(idx Index) StructuralType {
	return c.nodes[idx]
}

// SetPointee rewrites the pointee of an already-inserted pointer node,
// needed to build self-referential or mutually-recursive cycles where the
// pointee index isn't known until after the pointing node exists.
func (c *Container) SetPointee(idx, pointee Index) {
	t := c.nodes[idx]
	t.Pointee = pointee
	c.nodes[idx] = t
}

// SetVar associates a variable name with a type index, overwriting any
// previous association but preserving first-seen iteration order.
func (c *Container) SetVar(name string, idx Index) {
	if _, ok := c.vars[name]; !ok {
		c.varOrder = append(c.varOrder, name)
	}
	c.vars[name] = idx
}

// IndexOfTypeFor looks up the type index for a variable name.
func (c *Container) IndexOfTypeFor(name string) (Index, bool) {
	idx, ok := c.vars[name]
	return idx, ok
}

// VarTypeIter returns (name, index) pairs in insertion order, mirroring
// the original's var_type_iter.
func (c *Container) VarTypeIter() []VarType {
	out := make([]VarType, 0, len(c.varOrder))
	for _, name := range c.varOrder {
		out = append(out, VarType{Var: name, Index: c.vars[name]})
	}
	return out
}

type VarType struct {
	Var   string
	Index Index
}

// IsUndefinedPadding reports whether a node represents Ghidra's bare
// "undefined" marker: a variable the reconstruction tool saw but gave up
// on, as opposed to undefined1/undefined2/... which are sized-but-opaque
// blobs and do count as a real answer.
func IsUndefinedPadding(t StructuralType) bool {
	return t.Kind == KindPrimitive && t.Primitive == "undefined"
}

// DeepClone copies the subgraph rooted at idx from src into dst, returning
// the new root index in dst. Used by the standardized-metrics comparison,
// which must compare two type subgraphs by canonical string form without
// either one's indices leaking into the rendering.
func DeepClone(dst, src *Container, idx Index) Index {
	memo := make(map[Index]Index)
	var clone func(Index) Index
	clone = func(i Index) Index {
		if out, ok := memo[i]; ok {
			return out
		}
		t := src.Get(i)
		newIdx := dst.Insert(StructuralType{Kind: t.Kind, Primitive: t.Primitive, Size: t.Size})
		memo[i] = newIdx
		switch t.Kind {
		case KindPointer:
			pointee := clone(t.Pointee)
			nt := dst.Get(newIdx)
			nt.Pointee = pointee
			dst.nodes[newIdx] = nt
		case KindStruct, KindUnion:
			fields := make([]Field, len(t.Fields))
			for fi, f := range t.Fields {
				fields[fi] = Field{Offset: f.Offset, Name: f.Name, Type: clone(f.Type)}
			}
			nt := dst.Get(newIdx)
			nt.Fields = fields
			dst.nodes[newIdx] = nt
		}
		return newIdx
	}
	return clone(idx)
}

// Default returns a minimal placeholder node, used by generous-evaluation
// mode to stand in for a variable a candidate tool never produced a type
// for at all.
func Default() StructuralType {
	return StructuralType{Kind: KindUndefined, Primitive: "undefined"}
}

// primitiveByteSize maps a primitive type name to its size in bytes, the
// same rounding table Ghidra-derived output implies: undefinedN blobs are
// N bytes, "code" and bare "undefined" carry no size of their own.
func primitiveByteSize(name string) int {
	switch name {
	case "int8_t", "uint8_t", "bool":
		return 1
	case "int16_t", "uint16_t":
		return 2
	case "int32_t", "uint32_t", "float":
		return 4
	case "int64_t", "uint64_t", "double":
		return 8
	case "undefined", "code":
		return 0
	default:
		if strings.HasPrefix(name, "undefined") {
			if n, err := strconv.Atoi(strings.TrimPrefix(name, "undefined")); err == nil {
				return n
			}
		}
		return 0
	}
}

// AggregateSize computes the recursive size in bytes of the type at idx:
// a struct/union's own declared Size if set, else the byte extent implied
// by its highest-offset field; a pointer's machine word size; a
// primitive's byte width. Cycle-guarded so a self-referential struct
// (a field pointing back into its own layout) can't recurse forever.
func AggregateSize(c *Container, idx Index) int {
	visited := make(map[Index]bool)
	var rec func(Index) int
	rec = func(i Index) int {
		if visited[i] {
			return 0
		}
		visited[i] = true
		t := c.Get(i)
		switch t.Kind {
		case KindPointer:
			return 8
		case KindStruct, KindUnion:
			if t.Size > 0 {
				return t.Size
			}
			max := 0
			for _, f := range t.Fields {
				extent := f.Offset + rec(f.Type)
				if extent > max {
					max = extent
				}
			}
			return max
		case KindUndefined:
			return 0
		default:
			return primitiveByteSize(t.Primitive)
		}
	}
	return rec(idx)
}
