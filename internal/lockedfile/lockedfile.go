// Package lockedfile provides a write-exclusive-locked file handle that
// acquires its lock on construction and releases it (after a final flush)
// on Close, the Go translation of the original's LockedFile RAII wrapper
// (original_source/metrics/scorer/src/stats.rs).
package lockedfile

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is an os.File wrapped with an exclusive advisory lock, held from
// Acquire until Close.
type File struct {
	f *os.File
}

// Acquire takes an exclusive advisory lock on f, blocking until it is
// available, and returns a File that must be closed to release it.
func Acquire(f *os.File) (*File, error) {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

// Close flushes pending writes and releases the lock, then closes the
// underlying file. Matches the original's Drop impl: flush before
// unlock, always.
func (lf *File) Close() error {
	syncErr := lf.f.Sync()
	unlockErr := unix.Flock(int(lf.f.Fd()), unix.LOCK_UN)
	closeErr := lf.f.Close()
	if syncErr != nil {
		return syncErr
	}
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}

// ReadAll reads the entire file from the start, leaving the offset
// undefined for subsequent writes — callers that write afterward should
// call Truncate first.
func (lf *File) ReadAll() ([]byte, error) {
	if _, err := lf.f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(lf.f)
}

// Size returns the current file size.
func (lf *File) Size() int64 {
	info, err := lf.f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

// Truncate empties the file and rewinds to the start.
func (lf *File) Truncate() error {
	if err := lf.f.Truncate(0); err != nil {
		return err
	}
	_, err := lf.f.Seek(0, io.SeekStart)
	return err
}

// WriteLine appends s followed by a newline at the end of the file,
// whatever the current offset.
func (lf *File) WriteLine(s string) error {
	if _, err := lf.f.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	_, err := lf.f.WriteString(s + "\n")
	return err
}
