package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/gopher-digest/internal/domain/digest"
	"github.com/yanqian/gopher-digest/internal/infra/config"
	"github.com/yanqian/gopher-digest/pkg/util"
)

// S3Store writes extracted article text to an S3 compatible bucket (R2, MinIO, S3).
type S3Store struct {
	client *minio.Client
	bucket string
	logger *slog.Logger

	mu          sync.Mutex
	bucketReady bool
}

// NewS3Store constructs the snapshot adapter.
func NewS3Store(cfg config.SnapshotConfig, logger *slog.Logger) (*S3Store, error) {
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "http://"),
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init snapshot client: %w", err)
	}
	return &S3Store{client: client, bucket: cfg.Bucket, logger: logger.With("component", "snapshot.s3")}, nil
}

// Put uploads text and returns the object key.
func (s *S3Store) Put(ctx context.Context, articleID, text string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket %s: %w", s.bucket, err)
	}
	key := objectKey(util.NowUTC(), articleID)
	reader := strings.NewReader(text)
	info, err := s.client.PutObject(ctx, s.bucket, key, reader, reader.Size(), minio.PutObjectOptions{
		ContentType:      "text/plain; charset=utf-8",
		DisableMultipart: true,
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	s.logger.Debug("snapshot stored", "key", key, "size", info.Size)
	return key, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bucketReady {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil && minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			err = nil
		}
	}
	if err != nil {
		return err
	}
	s.bucketReady = true
	return nil
}

// objectKey groups snapshots by month: extracted/<yyyy>/<mm>/<id>.txt.
func objectKey(now time.Time, articleID string) string {
	return fmt.Sprintf("extracted/%s/%s.txt", util.DatePath(now), articleID)
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if idx := strings.IndexByte(raw, '/'); idx != -1 {
		raw = raw[:idx]
	}
	return raw
}

var _ digest.SnapshotStore = (*S3Store)(nil)
