// File: internal/assets/assets.go

// Package assets fetches inference artifacts (label maps) from an object
// store into a local cache at startup, so the service never reads the store
// on the request path.
package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vulnserve/internal/config"
)

// Store wraps a MinIO-compatible object store.
type Store struct {
	mc *minio.Client
}

// New connects to the object store described by cfg.
func New(cfg config.AssetsConfig) (*Store, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("assets: connect %s: %w", cfg.Endpoint, err)
	}
	return &Store{mc: mc}, nil
}

// Download copies one object into destPath, creating parent directories as
// needed.
func (s *Store) Download(ctx context.Context, bucket, key, destPath string) error {
	obj, err := s.mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("assets: get %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, obj); err != nil {
		return fmt.Errorf("assets: download %s/%s: %w", bucket, key, err)
	}
	return nil
}

// ResolveLabelMap returns the local path of the label-map asset. A configured
// LabelMapPath wins outright; otherwise the artifact is fetched from the
// object store into the cache directory.
func ResolveLabelMap(ctx context.Context, cfg config.AssetsConfig) (string, error) {
	if cfg.LabelMapPath != "" {
		return cfg.LabelMapPath, nil
	}
	store, err := New(cfg)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(cfg.CacheDir, cfg.LabelMapKey)
	if err := store.Download(ctx, cfg.Bucket, cfg.LabelMapKey, dest); err != nil {
		return "", err
	}
	return dest, nil
}
