package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/truthlens/internal/domain/files"
)

// LocalStore keeps uploads as {id}{ext} under a root directory.
type LocalStore struct {
	root    string
	maxSize int64
	log     *zap.Logger
}

// NewLocal creates root if needed.
func NewLocal(root string, maxSize int64, logger *zap.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSize <= 0 {
		maxSize = files.DefaultMaxSize
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root, maxSize: maxSize, log: logger}, nil
}

func (s *LocalStore) Save(ctx context.Context, id, filename string, r io.Reader) (string, error) {
	if !files.IsAllowed(filename) {
		return "", fmt.Errorf("%w: %s", files.ErrDisallowedType, filename)
	}
	if !validID(id) {
		return "", fmt.Errorf("invalid file id %q", id)
	}
	path := filepath.Join(s.root, files.StoredName(id, filename))
	n, err := writeLimited(path, r, s.maxSize)
	if err != nil {
		return "", err
	}
	s.log.Debug("upload saved", zap.String("file_id", id), zap.String("path", path), zap.Int64("bytes", n))
	return path, nil
}

func (s *LocalStore) Resolve(ctx context.Context, id string) (string, error) {
	return globID(s.root, id)
}

func (s *LocalStore) Delete(ctx context.Context, id string) (bool, error) {
	path, err := s.Resolve(ctx, id)
	if errors.Is(err, files.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		return false, err
	}
	return true, nil
}

func (s *LocalStore) Check(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.root)
	}
	return nil
}

// writeLimited copies r into path, failing with ErrSizeExceeded once more than
// max bytes arrive. The partial file is removed on any failure.
func writeLimited(path string, r io.Reader, max int64) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, io.LimitReader(r, max+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > max {
		err = fmt.Errorf("%w: more than %d bytes", files.ErrSizeExceeded, max)
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return n, nil
}

// globID finds {id}.* under dir. Ids are generated UUIDs; anything that could
// escape dir or act as a glob pattern never resolves.
func globID(dir, id string) (string, error) {
	if !validID(id) {
		return "", fmt.Errorf("%w: %s", files.ErrNotFound, id)
	}
	matches, err := filepath.Glob(filepath.Join(dir, id+".*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", files.ErrNotFound, id)
	}
	return matches[0], nil
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\*?[]`) && !strings.Contains(id, "..")
}
