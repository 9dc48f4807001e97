package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures the object-store backend.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Store inspects per-employee prefixes in an S3-compatible bucket
// (MinIO in self-hosted deployments).
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store creates an object-store backed document store.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Store{client: client, bucket: bucket}, nil
}

// listObjects returns object base names under the employee's prefix.
func (s *S3Store) listObjects(ctx context.Context, folder string) ([]string, error) {
	prefix := strings.TrimSuffix(folder, "/") + "/"

	var files []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if name != "" {
			files = append(files, name)
		}
	}
	return files, nil
}

func (s *S3Store) DocumentStatus(ctx context.Context, folder string) (map[string]string, error) {
	if folder == "" {
		return allNotFound(), nil
	}

	files, err := s.listObjects(ctx, folder)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return allNotFound(), nil
	}
	return classify(files), nil
}

func (s *S3Store) ListDocuments(ctx context.Context, folder string) ([]string, error) {
	if folder == "" {
		return nil, nil
	}

	files, err := s.listObjects(ctx, folder)
	if err != nil {
		return nil, err
	}

	var docs []string
	for _, f := range files {
		if strings.HasSuffix(strings.ToLower(f), ".pdf") {
			docs = append(docs, f)
		}
	}
	return docs, nil
}
