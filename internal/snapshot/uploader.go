// Package snapshot provides S3-compatible upload of database snapshots.
// When no bucket is configured (empty bucket), the NoopUploader is used and
// snapshots stay local-only.
package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hardikSrivastav/cal.it/internal/config"
)

// Uploader pushes snapshot files to remote storage.
type Uploader interface {
	// Upload stores the snapshot file under a timestamped object key and
	// returns the key. The NoopUploader returns an empty key.
	Upload(ctx context.Context, filePath string) (string, error)
}

// s3Client defines the minimal minio.Client operations used by S3Uploader.
// This interface enables testing with mock implementations.
type s3Client interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	FPutObject(ctx context.Context, bucket, objectName, filePath string, opts interface{}) error
}

// minioClientWrapper wraps *minio.Client to satisfy the s3Client interface.
// This is necessary because minio.Client methods have concrete option types
// that differ from our simplified interface.
type minioClientWrapper struct {
	client *minio.Client
}

func (w *minioClientWrapper) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return w.client.BucketExists(ctx, bucket)
}

func (w *minioClientWrapper) FPutObject(ctx context.Context, bucket, objectName, filePath string, opts interface{}) error {
	putOpts := minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	}
	_, err := w.client.FPutObject(ctx, bucket, objectName, filePath, putOpts)
	return err
}

// S3Uploader uploads snapshots to S3-compatible storage.
type S3Uploader struct {
	client s3Client
	bucket string
}

// Upload verifies the bucket exists and stores the snapshot under a
// timestamped key, so earlier uploads are never overwritten.
func (u *S3Uploader) Upload(ctx context.Context, filePath string) (string, error) {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return "", fmt.Errorf("check bucket %q: %w", u.bucket, err)
	}
	if !exists {
		return "", fmt.Errorf("bucket %q does not exist", u.bucket)
	}

	key := objectKey(time.Now().UTC())
	if err := u.client.FPutObject(ctx, u.bucket, key, filePath, nil); err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	return key, nil
}

// NoopUploader is used when remote snapshot storage is not configured.
type NoopUploader struct{}

// Upload is a no-op when remote storage is not configured.
func (u *NoopUploader) Upload(ctx context.Context, filePath string) (string, error) {
	return "", nil
}

// NewUploader creates the appropriate Uploader based on configuration.
// Returns NoopUploader when the bucket is empty, S3Uploader otherwise.
func NewUploader(cfg config.SnapshotConfig) (Uploader, error) {
	if cfg.Bucket == "" {
		return &NoopUploader{}, nil
	}

	useSSL := true
	if cfg.UseSSL != nil {
		useSSL = *cfg.UseSSL
	}
	endpoint := stripScheme(cfg.Endpoint, &useSSL)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}

	return &S3Uploader{
		client: &minioClientWrapper{client: client},
		bucket: cfg.Bucket,
	}, nil
}

// stripScheme removes an http(s):// prefix from the endpoint, since minio.New
// expects a bare host, and infers SSL from the scheme when one is present.
func stripScheme(endpoint string, ssl *bool) string {
	if after, ok := strings.CutPrefix(endpoint, "https://"); ok {
		*ssl = true
		return after
	}
	if after, ok := strings.CutPrefix(endpoint, "http://"); ok {
		*ssl = false
		return after
	}
	return endpoint
}

// objectKey returns the object key for a snapshot taken at ts.
// Convention: snapshots/<compact UTC timestamp>.db
func objectKey(ts time.Time) string {
	return "snapshots/" + ts.Format("20060102T150405Z") + ".db"
}
