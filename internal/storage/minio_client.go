package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"socialhub/internal/config"
)

// Object prefixes inside the bucket.
const (
	PostImagesPrefix      = "posts"
	ProfilePicturesPrefix = "profile_pictures"
)

type Storage interface {
	UploadImage(ctx context.Context, prefix, ownerID, fileName, contentType string, file io.Reader, size int64) (string, error)
	DeleteImage(ctx context.Context, objectName string) error
	ObjectName(imageURL string) (string, bool)
}

type MinIOClient struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOClient connects to MinIO and makes sure the image bucket exists.
func NewMinIOClient(ctx context.Context, cfg config.MinIO) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.BucketName, err)
		}
	}

	return &MinIOClient{
		client:    client,
		bucket:    cfg.BucketName,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// UploadImage stores the file under prefix/ownerID/yyyy/mm and returns its public URL.
func (m *MinIOClient) UploadImage(ctx context.Context, prefix, ownerID, fileName, contentType string, file io.Reader, size int64) (string, error) {
	now := time.Now()
	objectName := buildObjectName(prefix, ownerID, fileName, now)

	if contentType == "" {
		contentType = contentTypeFor(fileName)
	}

	_, err := m.client.PutObject(ctx, m.bucket, objectName, file, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": fileName,
				"owner-id":          ownerID,
				"uploaded-at":       now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	return m.publicURL + "/" + m.bucket + "/" + objectName, nil
}

func (m *MinIOClient) DeleteImage(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectName,
		minio.RemoveObjectOptions{
			GovernanceBypass: true,
		})
	if err != nil {
		return fmt.Errorf("failed to delete from MinIO: %w", err)
	}
	return nil
}

// ObjectName recovers the object name from a URL returned by UploadImage.
// It reports false for URLs that point elsewhere.
func (m *MinIOClient) ObjectName(imageURL string) (string, bool) {
	return objectNameFromURL(m.publicURL, m.bucket, imageURL)
}

func objectNameFromURL(publicURL, bucket, imageURL string) (string, bool) {
	prefix := publicURL + "/" + bucket + "/"
	if !strings.HasPrefix(imageURL, prefix) {
		return "", false
	}

	name := strings.TrimPrefix(imageURL, prefix)
	if name == "" {
		return "", false
	}
	return name, true
}

func buildObjectName(prefix, ownerID, fileName string, now time.Time) string {
	fileExt := strings.ToLower(filepath.Ext(fileName))
	if fileExt == "" {
		fileExt = ".jpg"
	}

	return fmt.Sprintf("%s/%s/%d/%02d/%s%s",
		prefix,
		ownerID,
		now.Year(),
		now.Month(),
		uuid.New().String(),
		fileExt)
}

func contentTypeFor(fileName string) string {
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
