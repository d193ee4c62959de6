package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docuvault/docuvault/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore implements Store over an object-storage bucket, for
// deployments where local disk is not durable enough. Paths are object
// keys within the configured bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore creates the client and ensures the bucket exists.
func NewMinIOStore(cfg config.MinIOConfig) (*MinIOStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStore{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

func (s *MinIOStore) Put(ctx context.Context, r io.Reader, originalName, contentType string) (*StoredFile, error) {
	key := uniqueName(originalName)
	info, err := s.client.PutObject(ctx, s.bucket, key, r, -1, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("minio put: %w", err)
	}
	return &StoredFile{Name: key, Path: key, Size: info.Size}, nil
}

func (s *MinIOStore) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinIOErr(err)
	}
	// GetObject is lazy; stat to surface missing objects now
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, mapMinIOErr(err)
	}
	return obj, nil
}

func (s *MinIOStore) Stat(ctx context.Context, path string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{}); err != nil {
		return mapMinIOErr(err)
	}
	return nil
}

func (s *MinIOStore) Delete(ctx context.Context, path string) error {
	// RemoveObject on a missing key already succeeds, matching the
	// delete-is-a-no-op contract.
	return s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{})
}

func mapMinIOErr(err error) error {
	if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
		return ErrNotFound
	}
	return err
}
