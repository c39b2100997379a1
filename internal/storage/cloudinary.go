package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"jobportal/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

const rawResource = "raw"

// CloudinaryStore uploads resumes as raw Cloudinary assets. The stored path is
// the asset's secure URL.
type CloudinaryStore struct {
	client        *cloudinary.Cloudinary
	folder        string
	uploadTimeout time.Duration
	maxRetries    int
	logger        *zap.Logger
}

// NewCloudinaryStore creates a store from Cloudinary credentials
func NewCloudinaryStore(cfg config.CloudinaryConfig, logger *zap.Logger) (*CloudinaryStore, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are missing")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.UploadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger.Info("Cloudinary resume storage initialized", zap.String("folder", cfg.Folder))

	return &CloudinaryStore{
		client:        cld,
		folder:        cfg.Folder,
		uploadTimeout: timeout,
		maxRetries:    cfg.MaxRetries,
		logger:        logger,
	}, nil
}

func (s *CloudinaryStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	startTime := time.Now()

	// Buffered so every retry uploads from the start.
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	params := uploader.UploadParams{
		PublicID:     id.String() + strings.ToLower(path.Ext(originalName)),
		Folder:       s.folder,
		ResourceType: rawResource,
	}

	var result *uploader.UploadResult
	operation := func() error {
		res, opErr := s.client.Upload.Upload(ctx, bytes.NewReader(content), params)
		if opErr != nil {
			return opErr
		}
		if res.Error.Message != "" {
			return fmt.Errorf("cloudinary: %s", res.Error.Message)
		}
		result = res
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = s.uploadTimeout / 2
	err = backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.maxRetries)), ctx),
		func(err error, d time.Duration) {
			s.logger.Warn("Upload attempt failed",
				zap.String("filename", originalName),
				zap.Error(err),
				zap.Duration("backoff", d))
		},
	)
	if err != nil {
		s.logger.Error("All upload attempts failed",
			zap.String("filename", originalName),
			zap.Int("attempts", s.maxRetries+1),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	s.logger.Info("Resume uploaded",
		zap.String("public_id", result.PublicID),
		zap.Int("bytes", result.Bytes),
		zap.Duration("duration", time.Since(startTime)))

	return result.SecureURL, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, storedPath string) error {
	publicID, err := publicIDFromURL(storedPath)
	if err != nil {
		return err
	}

	res, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: rawResource,
	})
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("failed to delete resume: %s", res.Error.Message)
	}

	s.logger.Info("Resume deleted", zap.String("public_id", publicID), zap.String("result", res.Result))
	return nil
}

// publicIDFromURL extracts the public id from a delivery URL such as
// https://res.cloudinary.com/<cloud>/raw/upload/v123/resumes/<id>.pdf
func publicIDFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, raw)
	}

	_, rest, found := strings.Cut(u.Path, "/upload/")
	if !found || rest == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, raw)
	}

	if first, tail, ok := strings.Cut(rest, "/"); ok && isVersionSegment(first) {
		rest = tail
	}

	return rest, nil
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
