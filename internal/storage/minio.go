package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/spotcheck/spotfeed/pkg/config"
	"github.com/spotcheck/spotfeed/pkg/logging"
)

// MinIO stores media objects in a MinIO (or S3-compatible) bucket.
type MinIO struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewMinIO connects to the object store and ensures the configured bucket
// exists.
func NewMinIO(ctx context.Context, cfg *config.StorageConfig) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(checkCtx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(checkCtx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	logging.GetLogger().Info("MinIO connection established", zap.String("bucket", cfg.Bucket))

	return &MinIO{
		client: client,
		bucket: cfg.Bucket,
		logger: logging.WithComponent("minio"),
	}, nil
}

// Upload stores an object under the given name.
func (m *MinIO) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("storage: failed uploading %s: %w", objectName, err)
	}
	return nil
}

// Remove deletes an object by name.
func (m *MinIO) Remove(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("storage: failed deleting %s: %w", objectName, err)
	}
	return nil
}
