// Package storage keeps uploaded document bytes on local disk or in a MinIO bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-readiness/internal/common"
)

// Store holds document blobs by key. Get on a missing key returns an error
// wrapping common.ErrNotFound; Delete on a missing key succeeds.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg common.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.Dir, logger)
	case "minio":
		s, err := NewMinioStore(MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			Region:    cfg.MinioRegion,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q: %w", cfg.Backend, common.ErrInvalidInput)
	}
}

// DocumentKey is the object key for a document: <project>/<item>/<document><ext>.
func DocumentKey(projectID uuid.UUID, itemID string, documentID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
	return path.Join(projectID.String(), safeSegment(itemID), documentID.String()+ext)
}

func safeSegment(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." {
		return "", fmt.Errorf("empty storage key: %w", common.ErrInvalidInput)
	}
	if k != strings.TrimPrefix(strings.ReplaceAll(key, "\\", "/"), "/") {
		return "", fmt.Errorf("storage key %q is not canonical: %w", key, common.ErrInvalidInput)
	}
	return k, nil
}
