// Package core — клиент объектного хранилища MinIO для архива исходных батчей.
package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"propintel/internal/config"
)

// Client — операции с объектами, которые нужны сервисам.
type Client interface {
	PutJSON(ctx context.Context, object string, v any) error
	GetJSON(ctx context.Context, object string, v any) error
}

type minioClient struct {
	mc     *minio.Client
	bucket string
	log    *slog.Logger
}

// NewMinioClient подключается к MinIO и создаёт бакет, если его нет.
func NewMinioClient(ctx context.Context, cfg config.MinioConfig, log *slog.Logger) (Client, error) {
	const op = "minio.NewMinioClient"

	endpoint := net.JoinHostPort(cfg.MinioEndpoint, strconv.Itoa(cfg.Port))
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioRootUser, cfg.MinioRootPassword, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := mc.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("%s: check bucket: %w", op, err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: create bucket: %w", op, err)
		}
		log.Info("minio bucket created", slog.String("bucket", cfg.BucketName))
	}

	return &minioClient{mc: mc, bucket: cfg.BucketName, log: log}, nil
}

// PutJSON сериализует v и кладёт в бакет под именем object.
func (c *minioClient) PutJSON(ctx context.Context, object string, v any) error {
	const op = "minio.PutJSON"

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	info, err := c.mc.PutObject(ctx, c.bucket, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.log.Debug("object stored", slog.String("object", object), slog.Int64("size", info.Size))
	return nil
}

// GetJSON читает объект и десериализует его в v.
func (c *minioClient) GetJSON(ctx context.Context, object string, v any) error {
	const op = "minio.GetJSON"

	obj, err := c.mc.GetObject(ctx, c.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
