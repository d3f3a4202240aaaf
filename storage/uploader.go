package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Dosada05/hackathon-portal/config"
	"github.com/Dosada05/hackathon-portal/models"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
	Size     int64
}

// FileUploader кладёт файлы заявок в объектное хранилище.
// size может быть -1, если длина заранее неизвестна.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader, size int64) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// New выбирает реализацию по cfg.Driver.
func New(cfg config.StorageConfig, logger zerolog.Logger) (FileUploader, error) {
	switch cfg.Driver {
	case "r2":
		return NewCloudflareR2Uploader(CloudflareR2UploaderConfig{
			AccountID:       cfg.AccountID,
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			BucketName:      cfg.BucketName,
			PublicBaseURL:   cfg.PublicBaseURL,
			Region:          cfg.Region,
		})
	case "minio":
		return NewMinIOUploader(MinIOUploaderConfig{
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			BucketName:      cfg.BucketName,
			PublicBaseURL:   cfg.PublicBaseURL,
			Region:          cfg.Region,
			UseSSL:          cfg.UseSSL,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// SubmissionKey строит ключ объекта: submissions/<teamId>/<round-slug>/<uuid><ext>.
// Исходное имя файла в ключ не попадает, только расширение.
func SubmissionKey(teamID string, round models.Round, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return fmt.Sprintf("submissions/%s/%s/%s%s", url.PathEscape(teamID), round.Slug(), uuid.NewString(), ext)
}

func publicURL(base, key string) string {
	if base == "" || key == "" {
		return "" // Не можем сформировать URL без этих данных
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}
	pathURL, err := url.Parse(strings.TrimPrefix(key, "/"))
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(pathURL).String()
}
