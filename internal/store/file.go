package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFile       = ".scout.lock"
	lockRetryDelay = 100 * time.Millisecond
)

// FileBackend keeps one JSON file per document in a directory.
type FileBackend struct {
	dir      string
	lockPath string
}

// NewFileBackend prepares dir and the tailored artifact directory.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Join(dir, TailoredPrefix), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &FileBackend{dir: dir, lockPath: filepath.Join(dir, lockFile)}, nil
}

func (b *FileBackend) Read(_ context.Context, name string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Write goes through a temp file in the same directory so readers never see
// a partial document.
func (b *FileBackend) Write(_ context.Context, name string, data []byte) error {
	target := filepath.Join(b.dir, name)
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// Lock opens its own handle on every call. flock locks are held per open
// file, so two holders inside one process still exclude each other.
func (b *FileBackend) Lock(ctx context.Context) (func() error, error) {
	fl := flock.New(b.lockPath)
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil && ctx.Err() == nil {
		fl.Close()
		return nil, fmt.Errorf("locking %s: %w", b.lockPath, err)
	}
	if !ok {
		fl.Close()
		return nil, fmt.Errorf("%w: %s", ErrLocked, b.lockPath)
	}
	return fl.Unlock, nil
}

func (b *FileBackend) Count(_ context.Context, prefix string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(b.dir, prefix, "*.json"))
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

func (b *FileBackend) Close() error {
	return nil
}
