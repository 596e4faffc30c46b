// Package logging builds the run-scoped logger. Each invocation constructs
// its own slog.Logger over a size-capped rotating file in the run directory,
// so repeated in-process runs (tests included) never accumulate handlers or
// share state.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Rotation policy for the run log.
const (
	maxLogBytes = 200_000
	maxBackups  = 3
)

// NewRunLogger returns a logger writing to name inside dir, plus a close
// function. The file rotates at 200KB keeping three numbered backups
// (name.1 is the most recent).
func NewRunLogger(dir, name string, level slog.Level) (*slog.Logger, func() error, error) {
	w, err := newRotatingFile(filepath.Join(dir, name), maxLogBytes, maxBackups)
	if err != nil {
		return nil, nil, err
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h), w.Close, nil
}

// rotatingFile is a size-capped append writer with numbered backups,
// matching the layout of the historical importer's log rotation. Rotation
// granularity in ecosystem rotation libraries is whole megabytes, which
// cannot express the 200KB cap, hence the local implementation.
type rotatingFile struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	backups  int
	f        *os.File
	size     int64
}

func newRotatingFile(path string, maxBytes int64, backups int) (*rotatingFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &rotatingFile{path: path, maxBytes: maxBytes, backups: backups, f: f, size: info.Size()}, nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size+int64(len(p)) > r.maxBytes && r.size > 0 {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := r.f.Write(p)
	r.size += int64(n)
	return n, err
}

// rotate shifts path.N -> path.N+1, dropping the oldest, then reopens a
// fresh file at path.
func (r *rotatingFile) rotate() error {
	if err := r.f.Close(); err != nil {
		return err
	}
	os.Remove(fmt.Sprintf("%s.%d", r.path, r.backups))
	for i := r.backups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", r.path, i), fmt.Sprintf("%s.%d", r.path, i+1))
	}
	if err := os.Rename(r.path, r.path+".1"); err != nil && !os.IsNotExist(err) {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	r.f = f
	r.size = 0
	return nil
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}
