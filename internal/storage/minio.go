// Package storage archives committed document snapshots to MinIO-compatible
// object storage. The archive is strictly best-effort: it never fails or
// delays a mutation.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/staffdesk/staffdesk/internal/store"
	"github.com/staffdesk/staffdesk/pkg/logger"
)

const snapshotPrefix = "snapshots/"

// SnapshotArchive uploads each committed document revision under a
// timestamped key, plus a fixed "latest" key for easy retrieval.
type SnapshotArchive struct {
	client *minio.Client
	bucket string
}

// NewSnapshotArchive creates the archive client and ensures the bucket exists.
func NewSnapshotArchive(cfg *Config) (*SnapshotArchive, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("snapshot archive config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	a := &SnapshotArchive{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, a.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return a, nil
}

// Archive uploads the document asynchronously. Failures are logged and
// otherwise ignored; the durable store, not the archive, is the source of
// truth.
func (a *SnapshotArchive) Archive(doc *store.Document) {
	go func() {
		b, err := json.Marshal(doc)
		if err != nil {
			logger.Warnf("snapshot encode failed: %v", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		key := snapshotPrefix + time.Now().UTC().Format("20060102T150405.000000000") + ".json"
		if err := a.put(ctx, key, b); err != nil {
			logger.Warnf("snapshot upload failed (%s): %v", key, err)
			return
		}
		if err := a.put(ctx, snapshotPrefix+"latest.json", b); err != nil {
			logger.Warnf("snapshot latest upload failed: %v", err)
		}
	}()
}

func (a *SnapshotArchive) put(ctx context.Context, key string, b []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(b), int64(len(b)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

// Fetch returns a stored snapshot by key (e.g. "snapshots/latest.json").
func (a *SnapshotArchive) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}
