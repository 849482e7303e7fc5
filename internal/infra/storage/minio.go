package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// objectPutter is the part of the MinIO client the store needs.
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type Store struct {
	client     objectPutter
	endpoint   string
	bucketName string
	region     string
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, endpoint: cli.EndpointURL().String(), bucketName: bucket, region: region}, nil
}

// UploadScreenshot implementasi ScreenshotStore. The data URI (or bare
// base64) is decoded and stored under key.
func (s *Store) UploadScreenshot(ctx context.Context, key, dataURI string) (string, error) {
	contentType, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put screenshot: %w", err)
	}

	// URL publik (jika bucket public), kalau private harus generate presigned URL
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.endpoint, "/"), s.bucketName, key), nil
}

// DecodeDataURI splits "data:<type>;base64,<payload>". Bare base64 is
// treated as JPEG.
func DecodeDataURI(s string) (string, []byte, error) {
	contentType := "image/jpeg"
	payload := strings.TrimSpace(s)
	if strings.HasPrefix(payload, "data:") {
		i := strings.Index(payload, "base64,")
		if i < 0 {
			return "", nil, fmt.Errorf("data uri is not base64 encoded")
		}
		if meta := strings.TrimSuffix(payload[len("data:"):i], ";"); meta != "" {
			contentType = meta
		}
		payload = payload[i+len("base64,"):]
	}
	if payload == "" {
		return "", nil, fmt.Errorf("empty screenshot")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return contentType, data, nil
}
