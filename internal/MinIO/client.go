package MinIO

import (
	"context"
	"errors"
	"fmt"
	"io"

	"file-storage-service/internal/objectStore"
	"file-storage-service/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type Config struct {
	MinioEndpoint  string `env:"MINIO_ENDPOINT" env-default:"minio:9000"`
	BucketName     string `env:"MINIO_BUCKET_NAME" env-default:"storage"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
	MinioRegion    string `env:"MINIO_REGION" env-default:""`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" env-default:"admin"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY" env-default:"Study2005@"`
}

// MinIOClient implements objectStore.ObjectStore on a single bucket.
type MinIOClient struct {
	Client *minio.Client
	Bucket string
}

var _ objectStore.ObjectStore = (*MinIOClient)(nil)

func New(ctx context.Context, cfg Config) (*MinIOClient, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.BucketName, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.MinioRegion})
		if err != nil {
			// Another instance may have created it in the meantime.
			exists, errBucketExists := client.BucketExists(ctx, cfg.BucketName)
			if !(errBucketExists == nil && exists) {
				return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.BucketName, err)
			}
		}
		logger.GetLogger(ctx).Info("bucket created", zap.String("bucket", cfg.BucketName))
	}

	return &MinIOClient{
		Client: client,
		Bucket: cfg.BucketName,
	}, nil
}

func (m *MinIOClient) Put(ctx context.Context, key string, reader io.Reader, contentType string, size int64) error {
	_, err := m.Client.PutObject(ctx, m.Bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return objectStore.Remote("put", key, err)
	}
	return nil
}

// Get stats the object before returning it: GetObject itself is lazy and
// would only report a missing key on the first Read.
func (m *MinIOClient) Get(ctx context.Context, key string) (*objectStore.Object, error) {
	obj, err := m.Client.GetObject(ctx, m.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate("get", key, err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, translate("get", key, err)
	}
	return &objectStore.Object{
		Key:         key,
		Body:        obj,
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

func (m *MinIOClient) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := m.Client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: m.Bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: m.Bucket, Object: srcKey},
	)
	if err != nil {
		return translate("copy", srcKey, err)
	}
	return nil
}

func (m *MinIOClient) Delete(ctx context.Context, key string) error {
	err := m.Client.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return objectStore.Remote("delete", key, err)
	}
	return nil
}

func (m *MinIOClient) Ping(ctx context.Context) error {
	exists, err := m.Client.BucketExists(ctx, m.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", m.Bucket)
	}
	return nil
}

func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey"
	}
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func translate(op, key string, err error) error {
	if isNotFound(err) {
		return objectStore.ErrObjectNotFound
	}
	return objectStore.Remote(op, key, err)
}
