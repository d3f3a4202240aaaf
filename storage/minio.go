package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

type MinIOUploaderConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
	Region          string
	UseSSL          bool
}

type minioUploader struct {
	client        *minio.Client
	bucketName    string
	region        string
	publicBaseURL string
	logger        zerolog.Logger

	ensureMu      sync.Mutex
	bucketEnsured bool
}

func NewMinIOUploader(cfg MinIOUploaderConfig, logger zerolog.Logger) (FileUploader, error) {
	if cfg.Endpoint == "" || cfg.BucketName == "" {
		return nil, errors.New("invalid MinIO configuration: endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.BucketName).
		Bool("ssl", cfg.UseSSL).
		Msg("MinIO uploader configured")

	return &minioUploader{
		client:        client,
		bucketName:    cfg.BucketName,
		region:        cfg.Region,
		publicBaseURL: cfg.PublicBaseURL,
		logger:        logger,
	}, nil
}

// Бакет создаётся лениво при первой загрузке: MinIO может подняться позже сервиса.
func (u *minioUploader) ensureBucket(ctx context.Context) error {
	u.ensureMu.Lock()
	defer u.ensureMu.Unlock()
	if u.bucketEnsured {
		return nil
	}

	exists, err := u.client.BucketExists(ctx, u.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", u.bucketName, err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, u.bucketName, minio.MakeBucketOptions{Region: u.region}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", u.bucketName, err)
		}
		u.logger.Info().Str("bucket", u.bucketName).Msg("Created new bucket")
	}
	u.bucketEnsured = true
	return nil
}

func (u *minioUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader, size int64) (*UploadResult, error) {
	if err := u.ensureBucket(ctx); err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := u.client.PutObject(ctx, u.bucketName, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object to MinIO (key: %s): %w", key, err)
	}

	u.logger.Debug().
		Str("bucket", u.bucketName).
		Str("key", key).
		Str("etag", info.ETag).
		Int64("size", info.Size).
		Msg("File uploaded to MinIO")

	return &UploadResult{
		Key:      key,
		Location: u.GetPublicURL(key),
		ETag:     info.ETag,
		Size:     info.Size,
	}, nil
}

func (u *minioUploader) Delete(ctx context.Context, key string) error {
	if err := u.client.RemoveObject(ctx, u.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object from MinIO (key: %s): %w", key, err)
	}
	return nil
}

func (u *minioUploader) GetPublicURL(key string) string {
	return publicURL(u.publicBaseURL, key)
}
