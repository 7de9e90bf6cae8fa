package store

import (
	"context"
	"io"
	"net/url"

	perr "codecorpus/internal/platform/errors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minioObjects implements Objects over minio-go
type minioObjects struct {
	client *minio.Client
}

// openS3 builds a minio client; the endpoint may be a bare host or a URL
func openS3(_ context.Context, cfg S3Config) (Objects, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, perr.WithField(perr.InvalidArgf("s3 credentials are required"), "CORE_S3_ACCESS_KEY")
	}
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "s3 client")
	}
	return &minioObjects{client: client}, nil
}

func (m *minioObjects) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return classifyMinio(err, "put", bucket, key)
	}
	return nil
}

func (m *minioObjects) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyMinio(err, "get", bucket, key)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller starts decoding
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, classifyMinio(err, "get", bucket, key)
	}
	return obj, nil
}

// classifyMinio maps minio error responses onto perr codes
func classifyMinio(err error, op, bucket, key string) error {
	code := perr.ErrorCodeIO
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchBucket", "NoSuchKey":
		code = perr.ErrorCodeNotFound
	case "SlowDown":
		code = perr.ErrorCodeTooManyRequests
	case "InternalError", "ServiceUnavailable":
		code = perr.ErrorCodeUnavailable
	}
	return perr.WithOp(perr.Wrapf(err, code, "s3 %s s3://%s/%s", op, bucket, key), "s3."+op)
}
