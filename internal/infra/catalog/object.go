package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/safetravels/internal/domain/stops"
)

// ObjectConfig locates a catalog object in S3 compatible storage.
type ObjectConfig struct {
	Endpoint  string
	Bucket    string
	Key       string
	AccessKey string
	SecretKey string
	Region    string
}

// ObjectSource loads the catalog from a bucket (Cloudflare R2, S3, MinIO).
type ObjectSource struct {
	client *minio.Client
	bucket string
	key    string
}

// NewObjectSource constructs the storage adapter.
func NewObjectSource(cfg ObjectConfig) (*ObjectSource, error) {
	if strings.TrimSpace(cfg.Bucket) == "" || strings.TrimSpace(cfg.Key) == "" {
		return nil, fmt.Errorf("catalog bucket and key are required")
	}
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &ObjectSource{client: client, bucket: cfg.Bucket, key: cfg.Key}, nil
}

// Name implements Source.
func (s *ObjectSource) Name() string {
	return "object:" + s.bucket + "/" + s.key
}

// Load implements Source.
func (s *ObjectSource) Load(ctx context.Context) (*stops.Catalog, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get catalog object: %w", err)
	}
	defer obj.Close()
	return Parse(obj)
}

var _ Source = (*ObjectSource)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if host, _, found := strings.Cut(raw, "/"); found {
		return host
	}
	return raw
}
