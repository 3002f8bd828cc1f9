package stypes

import (
	"fmt"
	"strings"
)

// ParseVars parses the variable-dump text format produced alongside a
// structural-types file: a "PROGRAM\n<name>\n" header followed eventually
// by a "VARIABLES\n" section, where each external variable is a single
// tab-indented line, optionally followed by double-tab-indented internal
// varnode lines that get joined into that external variable's key with
// "+". Grounded directly on the original's parse_vars.
func ParseVars(contents string) (map[string]string, error) {
	if !strings.HasPrefix(contents, "PROGRAM\n") {
		return nil, fmt.Errorf("stypes: vars file must start with PROGRAM")
	}
	idx := strings.Index(contents, "VARIABLES\n")
	if idx < 0 {
		return nil, fmt.Errorf("stypes: vars file missing VARIABLES section")
	}
	lines := strings.Split(contents[idx+len("VARIABLES\n"):], "\n")

	out := make(map[string]string)
	var curExternal string
	var internalParts []string
	flush := func() {
		if curExternal == "" {
			return
		}
		key := curExternal
		if len(internalParts) > 0 {
			key = strings.Join(internalParts, "+")
		}
		if _, dup := out[curExternal]; dup {
			fmt.Printf("stypes: warning: duplicate external var %q in vars file\n", curExternal)
		}
		out[curExternal] = key
	}
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "\t\t"):
			// An internal varnode's own name is only unique within its
			// enclosing function, so prefix it with the function name
			// taken from the external var's "name@funcname" suffix,
			// matching parse_varnode's `res += func_name; res += s`.
			_, funcName, _ := strings.Cut(curExternal, "@")
			varnode := funcName + strings.TrimSpace(strings.TrimPrefix(line, "\t\t"))
			internalParts = append(internalParts, varnode)
		case strings.HasPrefix(line, "\t"):
			flush()
			curExternal = strings.TrimPrefix(line, "\t")
			internalParts = nil
		case strings.TrimSpace(line) == "":
			// blank line between sections; ignore
		default:
			// end of VARIABLES section
			flush()
			curExternal = ""
			internalParts = nil
		}
	}
	flush()
	return out, nil
}

// GTVarsToTestVars builds a ground-truth-variable -> candidate-variable
// lookup from the two var maps, falling back to the ground-truth key
// itself when no candidate mapping exists for it.
func GTVarsToTestVars(gtVars, testVars map[string]string) map[string]string {
	// Reverse testVars: internal-key -> external-name.
	reverseTest := make(map[string]string, len(testVars))
	for ext, internal := range testVars {
		reverseTest[internal] = ext
	}
	out := make(map[string]string, len(gtVars))
	for gtExt, gtInternal := range gtVars {
		if testExt, ok := reverseTest[gtInternal]; ok {
			out[gtExt] = testExt
		} else {
			out[gtExt] = gtExt
		}
	}
	return out
}

// Lookup returns the mapped name for key, or key itself if unmapped —
// the Go equivalent of Rust's `map.get(var).unwrap_or(var)`.
func Lookup(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}
