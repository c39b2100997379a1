package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"jobportal/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

const resumeField = "ResumeFile"

type resumeService struct {
	store             storage.ResumeStore
	maxBytes          int64
	allowedExtensions []string
	logger            *zap.Logger
}

// NewResumeService creates the resume intake service
func NewResumeService(store storage.ResumeStore, maxBytes int64, allowedExtensions []string, logger *zap.Logger) ResumeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	exts := make([]string, 0, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		exts = append(exts, strings.ToLower(strings.TrimSpace(ext)))
	}
	return &resumeService{
		store:             store,
		maxBytes:          maxBytes,
		allowedExtensions: exts,
		logger:            logger,
	}
}

// Validate checks presence, size and extension of an upload
func (s *resumeService) Validate(upload *ResumeUpload) error {
	if upload == nil || upload.Content == nil || upload.Filename == "" || upload.Size <= 0 {
		return NewFieldError(resumeField, "Resume file is required", "REQUIRED")
	}

	if upload.Size > s.maxBytes {
		return s.tooLarge()
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !slices.Contains(s.allowedExtensions, ext) {
		return NewFieldError(resumeField,
			fmt.Sprintf("Invalid file type. Please upload one of: %s", strings.Join(s.allowedExtensions, ", ")),
			"INVALID_TYPE")
	}

	return nil
}

// Store validates and persists an upload, returning its stored path. The
// declared size is not trusted: a body longer than the limit is rejected.
func (s *resumeService) Store(ctx context.Context, upload *ResumeUpload) (string, error) {
	if err := s.Validate(upload); err != nil {
		return "", err
	}

	body := &countingReader{r: io.LimitReader(upload.Content, s.maxBytes+1)}
	storedPath, err := s.store.Save(ctx, upload.Filename, body)
	if err != nil {
		return "", NewInternalError("failed to store resume", err)
	}

	if body.n > s.maxBytes {
		s.Remove(ctx, storedPath)
		return "", s.tooLarge()
	}
	if body.n == 0 {
		s.Remove(ctx, storedPath)
		return "", NewFieldError(resumeField, "Resume file is required", "REQUIRED")
	}

	s.logger.Info("Resume stored", zap.String("path", storedPath), zap.Int64("bytes", body.n))
	return storedPath, nil
}

// Remove deletes a stored resume. Failures are logged, never returned.
func (s *resumeService) Remove(ctx context.Context, storedPath string) {
	if storedPath == "" {
		return
	}
	if err := s.store.Delete(ctx, storedPath); err != nil {
		level := s.logger.Warn
		if errors.Is(err, storage.ErrInvalidPath) {
			level = s.logger.Info
		}
		level("Failed to delete resume file", zap.String("path", storedPath), zap.Error(err))
	}
}

func (s *resumeService) tooLarge() *ValidationError {
	return NewFieldError(resumeField,
		fmt.Sprintf("File size exceeds the maximum limit of %s", formatBytes(s.maxBytes)),
		"TOO_LARGE")
}

func formatBytes(n int64) string {
	const mib = 1 << 20
	if n >= mib && n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
