// Package minio implements the artifact store on MinIO/S3 object storage.
package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/openpbrl/openpbrl/internal/infrastructure/storage"
	"github.com/openpbrl/openpbrl/pkg/errors"
)

// Config defines MinIO client configuration
type Config struct {
	// Endpoint is the MinIO server address
	Endpoint string

	// AccessKeyID for authentication
	AccessKeyID string

	// SecretAccessKey for authentication
	SecretAccessKey string

	// UseSSL enables TLS transport
	UseSSL bool

	// Bucket holding all artifacts
	Bucket string

	// Region of the bucket
	Region string
}

// minioStore stores artifacts as objects in a single bucket
type minioStore struct {
	client *minio.Client
	bucket string
}

// NewStore creates a MinIO-backed artifact store, creating the bucket if needed
func NewStore(ctx context.Context, cfg Config) (storage.ArtifactStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.NewValidationError(errors.CodeInvalidParameter,
			"minio endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.WrapInfrastructureError(err, errors.ErrArtifactGetFailed.Code,
			"failed to create minio client")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.WrapInfrastructureError(err, errors.ErrArtifactGetFailed.Code,
			"failed to check bucket")
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, errors.WrapInfrastructureError(err, errors.ErrArtifactPutFailed.Code,
				"failed to create bucket")
		}
	}

	return &minioStore{client: client, bucket: cfg.Bucket}, nil
}

// Get returns the payload stored at key
func (s *minioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.FromCode(errors.ErrArtifactGetFailed).WithCause(err).WithDetails("key", key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if errResp := minio.ToErrorResponse(err); errResp.Code == "NoSuchKey" {
			return nil, errors.FromCodef(errors.ErrArtifactNotFound, "%s", key)
		}
		return nil, errors.FromCode(errors.ErrArtifactGetFailed).WithCause(err).WithDetails("key", key)
	}
	return data, nil
}

// Put stores the payload at key; object PUT is atomic on the server side
func (s *minioStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return errors.FromCode(errors.ErrArtifactPutFailed).WithCause(err).WithDetails("key", key)
	}
	return nil
}

// Exists reports whether an object is stored at key
func (s *minioStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if errResp := minio.ToErrorResponse(err); errResp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, errors.FromCode(errors.ErrArtifactGetFailed).WithCause(err).WithDetails("key", key)
	}
	return true, nil
}

// Delete removes the object at key
func (s *minioStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.FromCode(errors.ErrArtifactPutFailed).WithCause(err).WithDetails("key", key)
	}
	return nil
}

// Ping checks bucket reachability
func (s *minioStore) Ping(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return errors.FromCode(errors.ErrArtifactGetFailed).WithCause(err)
	}
	return nil
}

// Close releases nothing; the client holds no persistent connections
func (s *minioStore) Close() error {
	return nil
}
