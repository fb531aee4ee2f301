package storage

import (
	"bytes"
	"context"
	"fmt"

	"quill/internal/config"
	"quill/internal/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageStore saves processed post images to a MinIO bucket.
type ImageStore struct {
	client *minio.Client
	bucket string
}

// NewImageStore connects to MinIO and ensures the image bucket exists.
func NewImageStore(ctx context.Context, cfg *config.Config) (*ImageStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &ImageStore{client: client, bucket: cfg.MinioBucket}, nil
}

// Save processes the raw upload and stores it under a random object name.
// It returns the path the stored image is served from.
func (s *ImageStore) Save(ctx context.Context, data []byte) (string, error) {
	processed, err := Process(data)
	if err != nil {
		return "", err
	}

	name := uuid.NewString() + ".webp"
	_, err = s.client.PutObject(ctx, s.bucket, name,
		bytes.NewReader(processed), int64(len(processed)),
		minio.PutObjectOptions{ContentType: "image/webp"})
	if err != nil {
		return "", models.NewInternalError(err)
	}

	return "/" + s.bucket + "/" + name, nil
}
