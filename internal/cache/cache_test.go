package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInputHashDeterministic(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(f, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	h1, err := InputHash([]string{f})
	if err != nil {
		t.Fatal(err)
	}
	h2, err := InputHash([]string{f})
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatalf("expected deterministic hash, got %q and %q", h1, h2)
	}

	if err := os.WriteFile(f, []byte("world"), 0644); err != nil {
		t.Fatal(err)
	}
	h3, err := InputHash([]string{f})
	if err != nil {
		t.Fatal(err)
	}
	if h3 == h1 {
		t.Fatalf("expected hash to change when content changes")
	}
}

func TestInsertGetRoundTrip(t *testing.T) {
	root := t.TempDir()
	c := New(root)

	liveOut := filepath.Join(t.TempDir(), "result.txt")
	if err := os.WriteFile(liveOut, []byte("output"), 0644); err != nil {
		t.Fatal(err)
	}

	runtime := 2500 * time.Millisecond
	if err := c.Insert("TestKind", "dep1", "inp1", map[string]string{"result.txt": liveOut}, &runtime); err != nil {
		t.Fatal(err)
	}

	entries, err := c.Get("TestKind", "dep1", "inp1")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := entries["result.txt"]; !ok {
		t.Fatalf("expected cached entry for result.txt, got %v", entries)
	}

	got, ok, err := c.GetRuntime("TestKind", "dep1", "inp1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got != runtime {
		t.Fatalf("expected runtime %v, got %v (ok=%v)", runtime, got, ok)
	}
}

func TestInsertWithoutRuntimeSentinel(t *testing.T) {
	root := t.TempDir()
	c := New(root)
	liveOut := filepath.Join(t.TempDir(), "out.bin")
	os.WriteFile(liveOut, []byte("x"), 0644)

	if err := c.Insert("TestKind", "dep1", "inp2", map[string]string{"out.bin": liveOut}, nil); err != nil {
		t.Fatal(err)
	}
	_, ok, err := c.GetRuntime("TestKind", "dep1", "inp2")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("expected NoTimeKnown sentinel to report ok=false")
	}
}

func TestGetMissingCacheEntryIsEmpty(t *testing.T) {
	c := New(t.TempDir())
	entries, err := c.Get("TestKind", "nope", "nope")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %v", entries)
	}
}
