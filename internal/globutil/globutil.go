// Package globutil implements recursive glob expansion: Go's
// filepath.Glob has no "**" support, but both the job manifest's
// dependency globs and the content-addressed cache's directory hashing
// need to walk an entire subtree matching a filename pattern.
package globutil

import (
	"os"
	"path/filepath"
	"sort"
)

// Recursive walks root and returns every non-directory path whose base
// name matches pattern (as interpreted by filepath.Match), sorted for
// determinism. Directories themselves are never returned.
func Recursive(root, pattern string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matched, merr := filepath.Match(pattern, d.Name())
		if merr != nil {
			return merr
		}
		if matched {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
