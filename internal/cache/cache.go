// Package cache implements the content-addressed job cache: outputs for
// a (dependency-hash, input-hash) pair are stored under a directory named
// after those two hashes, alongside a sentinel file recording how long
// the job took to produce them. Grounded directly on
// original_source/utils/runner/src/cache.rs.
package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"github.com/ftahirops/trexrunner/internal/globutil"
)

// Dir is the default cache root, matching the original's CACHE_DIR.
const Dir = "./.runner-cache"

// NoTimeKnown is written to the job-run-time sentinel when a job's
// output was inserted without a known elapsed time (e.g. during a
// cache-refresh-only pass).
const NoTimeKnown = "!!! NO TIME KNOWN !!!"

// Cache roots all cache directories at Path.
type Cache struct {
	Path string
}

// New returns a Cache rooted at path.
func New(path string) *Cache {
	return &Cache{Path: path}
}

// EntryKind distinguishes a cached output that is a plain file from one
// that is a whole directory tree.
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryDir
)

// Entry is one cached output, keyed by its original relative output path.
type Entry struct {
	Kind EntryKind
	Path string // absolute path within the cache directory
}

// DepHash hashes the contents of every file matched by the dependency
// globs: paths are sorted first, then every path's bytes are hashed,
// followed by the literal "data:" separator and, for each path in turn,
// the path's bytes again and then the file's content. A dependency glob that matches nothing is a configuration error
// (the job manifest named a dependency that doesn't exist), not a cache
// miss, so it's reported as an error rather than silently hashing to a
// constant.
func DepHash(deps []string) (string, error) {
	var paths []string
	for _, pattern := range deps {
		matches, err := expandDependencyGlob(pattern)
		if err != nil {
			return "", err
		}
		if len(matches) == 0 {
			return "", fmt.Errorf("cache: dependency glob %q matched no files", pattern)
		}
		paths = append(paths, matches...)
	}
	return hashPathsAndContents(paths)
}

// expandDependencyGlob resolves a dependency entry that may be a literal
// path (e.g. a Ghidra install marker) or a "**"-style glob pattern (e.g.
// tool source trees).
func expandDependencyGlob(pattern string) ([]string, error) {
	if !strings.Contains(pattern, "*") {
		if _, err := os.Stat(pattern); err != nil {
			return nil, nil
		}
		return []string{pattern}, nil
	}
	dir, base := splitGlobRoot(pattern)
	return globutil.Recursive(dir, base)
}

// splitGlobRoot splits "a/b/**/*.rs" into its non-glob root directory
// "a/b" and the trailing filename pattern "*.rs".
func splitGlobRoot(pattern string) (root, filePattern string) {
	parts := strings.Split(pattern, "/")
	var rootParts []string
	for _, p := range parts[:len(parts)-1] {
		if strings.Contains(p, "*") {
			break
		}
		rootParts = append(rootParts, p)
	}
	if len(rootParts) == 0 {
		rootParts = []string{"."}
	}
	return filepath.Join(rootParts...), parts[len(parts)-1]
}

// InputHash hashes a job's concrete input paths the same way as DepHash:
// sorted paths, each path's bytes, the literal "data:" separator, then
// each path's bytes again paired with its content — except directories
// contribute only the literal marker "dir" rather than their content
// (their content is itself the output of an earlier, separately-hashed
// job).
func InputHash(inputs []string) (string, error) {
	return hashPathsAndContents(inputs)
}

func hashPathsAndContents(paths []string) (string, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	h := blake3.New(32, nil)
	for _, p := range sorted {
		h.Write([]byte(p))
	}
	h.Write([]byte("data:"))
	for _, p := range sorted {
		h.Write([]byte(p))
		info, err := os.Stat(p)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			h.Write([]byte("dir"))
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		h.Write(data)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// DirFor returns the cache directory for a given kind name and hash pair.
func (c *Cache) DirFor(kindName, depHash, inpHash string) string {
	return filepath.Join(c.Path, kindName, depHash, inpHash)
}

const runtimeFile = "job-run-time"

// Get returns the cached entries for (kindName, depHash, inpHash), or an
// empty map if nothing is cached there yet (no directory, or a directory
// missing its job-run-time sentinel — an interrupted insert).
func (c *Cache) Get(kindName, depHash, inpHash string) (map[string]Entry, error) {
	dir := c.DirFor(kindName, depHash, inpHash)
	if _, err := os.Stat(filepath.Join(dir, runtimeFile)); err != nil {
		return map[string]Entry{}, nil
	}
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != dir {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]Entry)
	for _, p := range paths {
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return nil, err
		}
		if rel == runtimeFile {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		kind := EntryFile
		if info.IsDir() {
			kind = EntryDir
		}
		out[rel] = Entry{Kind: kind, Path: p}
	}
	return out, nil
}

// GetRuntime reads the job-run-time sentinel for a cache directory,
// returning (0, false) if it records the NoTimeKnown sentinel string.
func (c *Cache) GetRuntime(kindName, depHash, inpHash string) (time.Duration, bool, error) {
	dir := c.DirFor(kindName, depHash, inpHash)
	data, err := os.ReadFile(filepath.Join(dir, runtimeFile))
	if err != nil {
		return 0, false, err
	}
	s := strings.TrimSpace(string(data))
	if s == NoTimeKnown {
		return 0, false, nil
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return time.Duration(seconds * float64(time.Second)), true, nil
}

// Insert copies outputs (relative-output-path -> absolute live path) into
// the cache directory for (kindName, depHash, inpHash), recording runtime
// (or the NoTimeKnown sentinel if nil). The copy is staged into a
// uuid-suffixed temp directory and renamed into place atomically so a
// concurrent reader never observes a partially-populated cache entry.
func (c *Cache) Insert(kindName, depHash, inpHash string, outputs map[string]string, runtime *time.Duration) error {
	final := c.DirFor(kindName, depHash, inpHash)
	staging := final + ".staging-" + uuid.NewString()
	if err := os.MkdirAll(staging, 0755); err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	for rel, livePath := range outputs {
		dst := filepath.Join(staging, rel)
		if err := copyPath(livePath, dst); err != nil {
			return fmt.Errorf("cache: copying output %q: %w", livePath, err)
		}
	}

	runtimeStr := NoTimeKnown
	if runtime != nil {
		runtimeStr = strconv.FormatFloat(runtime.Seconds(), 'f', -1, 64)
	}
	if err := os.WriteFile(filepath.Join(staging, runtimeFile), []byte(runtimeStr), 0644); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(final), 0755); err != nil {
		return err
	}
	os.RemoveAll(final)
	return os.Rename(staging, final)
}

func copyPath(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return copyDir(src, dst)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyPath(path, target)
	})
}
