package stypes

import (
	"encoding/json"
	"fmt"
	"os"
)

// wireNode is the on-disk shape of one StructuralType node: a flat,
// JSON-friendly mirror of StructuralType where indices are plain ints.
// Grounded on the shape SerializableStructuralTypes::parse_from expects
// in original_source/metrics/scorer/src/main.rs — one node per array
// entry, referencing other nodes by position — adapted to JSON since
// nothing in this module's dependency set is a bespoke binary/text
// codec for the original's own wire format.
type wireNode struct {
	Kind      string       `json:"kind"`
	Primitive string       `json:"primitive,omitempty"`
	Pointee   int          `json:"pointee,omitempty"`
	Fields    []wireField  `json:"fields,omitempty"`
	Size      int          `json:"size,omitempty"`
}

type wireField struct {
	Offset int    `json:"offset"`
	Name   string `json:"name"`
	Type   int    `json:"type"`
}

type wireFile struct {
	Nodes []wireNode       `json:"nodes"`
	Vars  map[string]int   `json:"vars"`
	Order []string         `json:"var_order"`
}

func kindToWire(k Kind) string {
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
		panic(fmt.Sprintf("stypes: unhandled kind %v in serialization", k))
	}
}

func kindFromWire(s string) (Kind, error) {
	switch s {
	case "undefined":
		return KindUndefined, nil
	case "primitive":
		return KindPrimitive, nil
	case "pointer":
		return KindPointer, nil
	case "struct":
		return KindStruct, nil
	case "union":
		return KindUnion, nil
	default:
		return 0, fmt.Errorf("stypes: unknown node kind %q", s)
	}
}

// Marshal renders c to the JSON structural-types dump format that
// ParseStructuralTypes reads back.
func Marshal(c *Container) ([]byte, error) {
	f := wireFile{
		Nodes: make([]wireNode, len(c.nodes)),
		Vars:  make(map[string]int, len(c.vars)),
		Order: append([]string(nil), c.varOrder...),
	}
	for i, n := range c.nodes {
		wn := wireNode{Kind: kindToWire(n.Kind), Primitive: n.Primitive, Size: n.Size}
		if n.Kind == KindPointer {
			wn.Pointee = int(n.Pointee)
		}
		for _, fld := range n.Fields {
			wn.Fields = append(wn.Fields, wireField{Offset: fld.Offset, Name: fld.Name, Type: int(fld.Type)})
		}
		f.Nodes[i] = wn
	}
	for name, idx := range c.vars {
		f.Vars[name] = int(idx)
	}
	return json.MarshalIndent(f, "", "  ")
}

// ParseStructuralTypes parses the JSON structural-types dump format this
// tool reads and writes, the Go-native stand-in for the original's
// SerializableStructuralTypes::parse_from.
func ParseStructuralTypes(data []byte) (*Container, error) {
	var f wireFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("stypes: parsing structural types: %w", err)
	}
	c := NewContainer()
	c.nodes = make([]StructuralType, len(f.Nodes))
	for i, wn := range f.Nodes {
		kind, err := kindFromWire(wn.Kind)
		if err != nil {
			return nil, err
		}
		t := StructuralType{Kind: kind, Primitive: wn.Primitive, Size: wn.Size, Pointee: Index(wn.Pointee)}
		for _, wfld := range wn.Fields {
			t.Fields = append(t.Fields, Field{Offset: wfld.Offset, Name: wfld.Name, Type: Index(wfld.Type)})
		}
		c.nodes[i] = t
	}
	for _, name := range f.Order {
		if idx, ok := f.Vars[name]; ok {
			c.SetVar(name, Index(idx))
		}
	}
	for name, idx := range f.Vars {
		if _, ok := c.vars[name]; !ok {
			c.SetVar(name, Index(idx))
		}
	}
	return c, nil
}

// LoadFile reads and parses a structural-types dump from disk.
func LoadFile(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseStructuralTypes(data)
}

// SaveFile renders c and writes it to path.
func SaveFile(path string, c *Container) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
