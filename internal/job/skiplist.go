package job

import (
	"bufio"
	"os"
	"strings"
	"sync"
)

// SkipListPath is the file listing (JobType, base) pairs to always skip,
// one "Kind base" pair per line, blank lines and "#"-comments ignored.
// Grounded on job.rs's RUNNER_SKIP_FILE/RUNNER_SKIPS.
const SkipListPath = "utils/runner/runner-skip-files"

var (
	skipListOnce sync.Once
	skipList     map[string]bool
)

func loadSkipList() map[string]bool {
	skipListOnce.Do(func() {
		skipList = make(map[string]bool)
		f, err := os.Open(SkipListPath)
		if err != nil {
			return
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			skipList[line] = true
		}
	})
	return skipList
}

// IsSkipped reports whether (k, base) appears in the skip list.
func IsSkipped(k Kind, base string) bool {
	return loadSkipList()[k.String()+" "+base]
}
