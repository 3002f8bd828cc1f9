package stypes

import (
	"fmt"
	"sort"
	"strings"
)

// CanonicalCType renders the subgraph rooted at idx as a canonical string,
// alpha-renaming struct tags as they're first encountered in traversal
// order so that two structurally identical but differently-named type
// graphs print identically. This is the Go analogue of
// trex::c_type_printer::PrintableCTypes, reduced to exactly what the
// standardized-metrics comparison needs: an equality check between two
// canonicalized strings.
func CanonicalCType(c *Container, idx Index) string {
	names := make(map[Index]string)
	next := 0
	var render func(Index) string
	render = func(i Index) string {
		t := c.Get(i)
		switch t.Kind {
		case KindUndefined:
			return "undefined"
		case KindPrimitive:
			return t.Primitive
		case KindPointer:
			return render(t.Pointee) + "*"
		case KindStruct, KindUnion:
			name, ok := names[i]
			if !ok {
				name = fmt.Sprintf("%s%d", kindTag(t.Kind), next)
				next++
				names[i] = name
			}
			fields := append([]Field(nil), t.Fields...)
			sort.Slice(fields, func(a, b int) bool { return fields[a].Offset < fields[b].Offset })
			var sb strings.Builder
			sb.WriteString(kindTag(t.Kind))
			sb.WriteString(" ")
			sb.WriteString(name)
			sb.WriteString(" { ")
			for _, f := range fields {
				sb.WriteString(fmt.Sprintf("%s @%d: %s; ", f.Name, f.Offset, render(f.Type)))
			}
			sb.WriteString("}")
			return sb.String()
		default:
			return "?"
		}
	}
	return render(idx)
}

func kindTag(k Kind) string {
	if k == KindUnion {
		return "union"
	}
	return "struct"
}
