package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"giveget/internal/domain/service"
)

// ObjectStore is the subset of *minio.Client the photo store needs.
type ObjectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type MinioStorageClient struct {
	client     ObjectStore
	bucketName string
	baseURL    string
}

var _ service.FileUploadService = (*MinioStorageClient)(nil)

func NewMinioStorageClient(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinioStorageClient, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return newMinioStorageClient(client, bucketName, client.EndpointURL().String()), nil
}

func newMinioStorageClient(client ObjectStore, bucketName, baseURL string) *MinioStorageClient {
	return &MinioStorageClient{
		client:     client,
		bucketName: bucketName,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *MinioStorageClient) UploadFile(ctx context.Context, file io.Reader, size int64, fileType, folder string) (string, error) {
	filename := objectName(folder, fileType)

	_, err := s.client.PutObject(ctx, s.bucketName, filename, file, size, minio.PutObjectOptions{
		ContentType:  fileType,
		CacheControl: "public, max-age=86400",
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	return s.objectURL(filename), nil
}

func (s *MinioStorageClient) DeleteFile(ctx context.Context, fileURL string) error {
	prefix := s.objectURL("")
	if !strings.HasPrefix(fileURL, prefix) {
		return fmt.Errorf("invalid object URL or bucket mismatch")
	}

	if err := s.client.RemoveObject(ctx, s.bucketName, fileURL[len(prefix):], minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

func (s *MinioStorageClient) Close() error {
	return nil
}

func (s *MinioStorageClient) objectURL(name string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucketName, name)
}
