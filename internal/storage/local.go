package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// LocalStore keeps resumes in a directory served under a URL prefix
type LocalStore struct {
	dir    string
	prefix string
	logger *zap.Logger
}

// NewLocalStore creates dir if needed
func NewLocalStore(dir, prefix string, logger *zap.Logger) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("resume directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create resume directory: %w", err)
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LocalStore{dir: dir, prefix: prefix, logger: logger}, nil
}

// Dir returns the directory files are written to
func (s *LocalStore) Dir() string { return s.dir }

// Prefix returns the URL prefix of stored paths
func (s *LocalStore) Prefix() string { return s.prefix }

func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	name := id.String() + strings.ToLower(filepath.Ext(originalName))

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	s.logger.Info("Resume stored", zap.String("file", name))
	return s.prefix + name, nil
}

func (s *LocalStore) Delete(ctx context.Context, storedPath string) error {
	name, err := s.fileName(storedPath)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete resume: %w", err)
	}

	return nil
}

// Open returns the stored file for reading
func (s *LocalStore) Open(storedPath string) (*os.File, error) {
	name, err := s.fileName(storedPath)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.dir, name))
}

// fileName maps a stored path back to a bare file name inside dir
func (s *LocalStore) fileName(storedPath string) (string, error) {
	if !strings.HasPrefix(storedPath, s.prefix) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, storedPath)
	}
	name := strings.TrimPrefix(storedPath, s.prefix)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, storedPath)
	}
	return name, nil
}
