package lock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/okonechnikov/chromesnap/internal/logger"
)

const (
	// Filename is the lock file location relative to the guarded directory.
	Filename = ".lock"

	// initialRetryDelay is the first pause between acquisition attempts.
	initialRetryDelay = 50 * time.Millisecond

	// maxRetryDelay caps the pause between acquisition attempts.
	maxRetryDelay = time.Second
)

// ErrTimeout is returned when the lock cannot be acquired within the
// configured window.
var ErrTimeout = errors.New("lock acquisition timed out")

// State is the persisted content of a lock file.
type State struct {
	// PID identifies the process holding the lock.
	PID int `json:"pid"`
	// Timestamp is when the lock was acquired.
	Timestamp time.Time `json:"timestamp"`
}

// Options tune acquisition behaviour.
type Options struct {
	// Timeout bounds how long Acquire waits for a busy lock.
	Timeout time.Duration
	// StaleAfter is the age past which a lock counts as abandoned.
	StaleAfter time.Duration
}

// Handle represents a held lock. Release is idempotent.
type Handle struct {
	path     string
	mu       sync.Mutex
	released bool
}

// Acquire obtains the advisory lock guarding dir. A missing lock file is
// created immediately via an exclusive-create open; an existing one is
// reclaimed when stale, otherwise acquisition retries with bounded
// backoff until opts.Timeout elapses.
func Acquire(ctx context.Context, dir string, opts Options) (*Handle, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare lock dir: %w", err)
	}

	var (
		path     = filepath.Join(dir, Filename)
		deadline = time.Now().Add(opts.Timeout)
		delay    = initialRetryDelay
	)

	for {
		created, err := tryCreate(path)
		if err != nil {
			return nil, err
		}

		if created {
			return &Handle{path: path}, nil
		}

		if stale(path, opts.StaleAfter) {
			logger.WarnKV(ctx, "Reclaiming stale lock", "path", path)

			if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("remove stale lock: %w", err)
			}

			continue
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%s: %w", path, ErrTimeout)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		if delay *= 2; delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

// Release removes the lock file. Calling it more than once is safe.
func (h *Handle) Release() error {
	if h == nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return nil
	}

	h.released = true

	if err := os.Remove(h.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release lock: %w", err)
	}

	return nil
}

// WithScope acquires the lock, runs fn and releases on every exit path,
// including a failing fn.
func WithScope(ctx context.Context, dir string, opts Options, fn func(context.Context) error) error {
	handle, err := Acquire(ctx, dir, opts)
	if err != nil {
		return err
	}

	defer func() {
		if releaseErr := handle.Release(); releaseErr != nil {
			logger.ErrorKV(ctx, "Failed to release lock", "error", releaseErr)
		}
	}()

	return fn(ctx)
}

// IsHeld reports whether a live lock currently guards dir. A stale lock
// reports as not held; the file is left in place for Acquire to reclaim.
func IsHeld(dir string, staleAfter time.Duration) bool {
	path := filepath.Join(dir, Filename)
	if _, err := os.Stat(path); err != nil {
		return false
	}

	return !stale(path, staleAfter)
}

// tryCreate attempts the exclusive creation of the lock file, recording
// the current process and time. It reports false when the file already
// exists.
func tryCreate(path string) (bool, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}

		return false, fmt.Errorf("create lock: %w", err)
	}

	state := State{
		PID:       os.Getpid(),
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(state)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(path)

		return false, fmt.Errorf("encode lock state: %w", err)
	}

	if _, err = file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(path)

		return false, fmt.Errorf("write lock state: %w", err)
	}

	if err = file.Close(); err != nil {
		_ = os.Remove(path)

		return false, fmt.Errorf("close lock: %w", err)
	}

	return true, nil
}

// stale reports whether the lock file at path is abandoned: unreadable,
// older than staleAfter, or recording a process that no longer runs.
func stale(path string, staleAfter time.Duration) bool {
	contents, err := os.ReadFile(path)
	if err != nil {
		// Racing with a concurrent release; treat as gone.
		return errors.Is(err, os.ErrNotExist)
	}

	var state State
	if err = json.Unmarshal(contents, &state); err != nil {
		// A lock nobody can decode protects nobody.
		return true
	}

	if staleAfter > 0 && time.Since(state.Timestamp) > staleAfter {
		return true
	}

	if state.PID > 0 && state.PID != os.Getpid() {
		process, psErr := ps.FindProcess(state.PID)
		if psErr == nil && process == nil {
			// The recorded holder is no longer alive.
			return true
		}
	}

	return false
}
