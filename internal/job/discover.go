package job

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ftahirops/trexrunner/internal/globutil"
)

// prereqAndSummaryKinds run once per benchmark directory rather than once
// per binary.
var prereqAndSummaryKinds = map[Kind]bool{
	ConfirmBasicPreRequisites: true,
	SummarizeAllMetrics:       true,
}

// JobsAt enumerates every base path a job of kind k should run against,
// rooted at baseDir. baseDir must end in "evalfiles", matching the
// original's assertion that job discovery only ever runs against the
// benchmark's canonical evaluation-files directory. For per-binary kinds
// this globs every "*.binar.xz" under baseDir and strips the ".xz" and
// ".binar" suffixes to get each binary's base path; for the two
// once-per-directory kinds it returns a single job at baseDir itself.
func JobsAt(baseDir string, k Kind) ([]string, error) {
	if filepath.Base(filepath.Clean(baseDir)) != "evalfiles" {
		return nil, fmt.Errorf("job: base dir %q must end in \"evalfiles\"", baseDir)
	}
	if prereqAndSummaryKinds[k] {
		return []string{baseDir}, nil
	}
	matches, err := globutil.Recursive(baseDir, "*.binar.xz")
	if err != nil {
		return nil, err
	}
	bases := make([]string, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(m, ".xz")
		base = strings.TrimSuffix(base, ".binar")
		bases = append(bases, base)
	}
	return bases, nil
}
