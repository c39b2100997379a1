// Package storage persists uploaded resumes and hands back the stored path
// recorded on an application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"jobportal/internal/config"

	"go.uber.org/zap"
)

// ResumeStore saves resume files and removes them by stored path
type ResumeStore interface {
	// Save writes r under a fresh unique name keeping the extension of
	// originalName, and returns the stored path.
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	// Delete removes a stored file. Unknown paths are not an error.
	Delete(ctx context.Context, storedPath string) error
}

var (
	ErrInvalidPath = errors.New("invalid stored path")
	ErrSaveFailed  = errors.New("failed to save file")
)

// New builds the store selected by cfg.Resume.Storage
func New(cfg *config.Config, logger *zap.Logger) (ResumeStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(cfg.Resume.Storage) {
	case "", "local":
		return NewLocalStore(cfg.Resume.Dir, cfg.Resume.PathPrefix, logger)
	case "cloudinary":
		return NewCloudinaryStore(cfg.Cloudinary, logger)
	default:
		return nil, fmt.Errorf("unsupported resume storage: %s", cfg.Resume.Storage)
	}
}
