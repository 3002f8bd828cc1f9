package rules

import (
	"fmt"
	"os"
	"strings"

	"github.com/ftahirops/trexrunner/internal/lockedfile"
)

// CSVHeadings returns the fixed header line for ScoreStats CSV output:
// "AvgScore,NumVars" followed by one "{Property}-Not{Condition}" column
// per (Property, Condition) pair appearing in the rule tree.
func (s *ScoreStats) CSVHeadings() string {
	var sb strings.Builder
	sb.WriteString("AvgScore,NumVars")
	for _, col := range s.columns {
		fmt.Fprintf(&sb, ",%v-Not%v", col.Property, col.Condition)
	}
	return sb.String()
}

// ToCSV renders one data row matching CSVHeadings' column order.
func (s *ScoreStats) ToCSV() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%f,%d", s.AvgScore(), s.DomainSize)
	for _, col := range s.columns {
		fmt.Fprintf(&sb, ",%d", s.FailureReasons[col])
	}
	return sb.String()
}

// ToNLSV renders the same data as one "name: value" line per nonzero
// field, for human-readable debugging output.
func (s *ScoreStats) ToNLSV() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "AvgScore: %f\n", s.AvgScore())
	fmt.Fprintf(&sb, "NumVars: %d\n", s.DomainSize)
	for _, col := range s.columns {
		if n := s.FailureReasons[col]; n > 0 {
			fmt.Fprintf(&sb, "%v-Not%v: %d\n", col.Property, col.Condition, n)
		}
	}
	return sb.String()
}

// FailedDueTo returns how many variables failed specifically because of
// the given (Property, Condition) check.
func (s *ScoreStats) FailedDueTo(p Property, c Condition) uint64 {
	return s.FailureReasons[column{Property: p, Condition: c}]
}

// WriteToOrUpdateCSV appends (or replaces) this program's row in the CSV
// file at path, under an exclusive file lock so concurrent scorer
// invocations across programs in the same benchmark don't corrupt each
// other's output. Grounded on stats.rs's write_to_csv / LockedFile.
func (s *ScoreStats) WriteToOrUpdateCSV(path, program string) error {
	if program == "" {
		return fmt.Errorf("rules: program name must not be empty")
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("rules: opening %s: %w", path, err)
	}
	lf, err := lockedfile.Acquire(f)
	if err != nil {
		f.Close()
		return err
	}
	defer lf.Close()

	header := "Program," + s.CSVHeadings()

	buf, err := lf.ReadAll()
	if err != nil {
		return err
	}
	if !strings.Contains(string(buf), header) {
		if err := lf.Truncate(); err != nil {
			return err
		}
	}

	if lf.Size() == 0 {
		if err := lf.WriteLine(header); err != nil {
			return err
		}
	}

	buf, err = lf.ReadAll()
	if err != nil {
		return err
	}
	lines := strings.Split(string(buf), "\n")

	seenPrograms := make(map[string]bool, len(lines))
	for _, line := range lines {
		if line == "" || line == header {
			continue
		}
		name, _, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		if seenPrograms[name] {
			return fmt.Errorf("rules: %s already contains more than one row for program %s", path, name)
		}
		seenPrograms[name] = true
	}

	prefix := fmt.Sprintf("%q,", program)
	var kept []string
	for _, line := range lines {
		if line != "" && !strings.HasPrefix(line, prefix) {
			kept = append(kept, line)
		}
	}
	if err := lf.Truncate(); err != nil {
		return err
	}
	if err := lf.WriteLine(strings.Join(kept, "\n")); err != nil {
		return err
	}

	return lf.WriteLine(fmt.Sprintf("%q,%s", program, s.ToCSV()))
}
