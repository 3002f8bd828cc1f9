package runner

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/mem"
)

// RAMReader reports total and available host memory in bytes. An
// interface so the admission policy is testable without touching the
// real host.
type RAMReader interface {
	Read() (total, available uint64, err error)
}

// gopsutilRAMReader is the production RAMReader, generalizing the same
// /proc/meminfo-derived figures xtop's own collector/memory.go computes
// into a small reusable call via github.com/shirou/gopsutil/v3/mem
// rather than re-parsing /proc a second time in this package.
type gopsutilRAMReader struct{}

func (gopsutilRAMReader) Read() (total, available uint64, err error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return procMeminfoRAMReader{}.Read()
	}
	return v.Total, v.Available, nil
}

// procMeminfoRAMReader falls back to reading /proc/meminfo directly, for
// platforms or sandboxes where gopsutil's VirtualMemory call fails (e.g.
// a restricted container without /proc/meminfo exposed the way gopsutil
// expects).
type procMeminfoRAMReader struct{}

func (procMeminfoRAMReader) Read() (total, available uint64, err error) {
	fields, err := parseMeminfo("/proc/meminfo")
	if err != nil {
		return 0, 0, err
	}
	memTotal, ok := fields["MemTotal"]
	if !ok {
		return 0, 0, fmt.Errorf("runner: /proc/meminfo missing MemTotal")
	}
	total = parseMeminfoKB(memTotal) * 1024
	if avail, ok := fields["MemAvailable"]; ok {
		available = parseMeminfoKB(avail) * 1024
		return total, available, nil
	}
	free := parseMeminfoKB(fields["MemFree"]) * 1024
	cached := parseMeminfoKB(fields["Cached"]) * 1024
	return total, free + cached, nil
}

// parseMeminfo reads /proc/meminfo's "Key:    123 kB" lines into a map
// keyed by Key, with the raw value string (including any " kB" suffix)
// as-is for parseMeminfoKB to finish parsing.
func parseMeminfo(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		m[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return m, scanner.Err()
}

// parseMeminfoKB parses a /proc/meminfo value like "16384000 kB" into
// its number of kibibytes, returning 0 if it can't be parsed.
func parseMeminfoKB(s string) uint64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "kB"))
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}
