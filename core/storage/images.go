package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"portfolio-api/core/reconcile"

	"github.com/docker/go-units"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// AllowedImageTypes maps accepted MIME types to the extension used for object keys.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageStore stores entity images in the bucket.
// It implements reconcile.Store.
type ImageStore struct {
	client  Client
	bucket  string
	region  string
	baseURL string
	maxSize int64
	logger  *zap.Logger
}

// NewImageStore creates an ImageStore for the configured bucket.
func NewImageStore(client Client, cfg Config, logger *zap.Logger) (*ImageStore, error) {
	maxSize, err := units.RAMInBytes(cfg.MaxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("invalid max upload size %q: %w", cfg.MaxUploadSize, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageStore{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: cfg.BaseURL(),
		maxSize: maxSize,
		logger:  logger,
	}, nil
}

// Bucket returns the bucket name.
func (s *ImageStore) Bucket() string {
	return s.bucket
}

// Client returns the underlying storage client.
func (s *ImageStore) Client() Client {
	return s.client
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *ImageStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Created bucket", zap.String("bucket", s.bucket))
	return nil
}

// Upload validates the file, stores it under folder with a random name and
// returns its public URL.
func (s *ImageStore) Upload(ctx context.Context, folder string, up reconcile.Upload) (reconcile.ImageRef, error) {
	if len(up.Data) == 0 {
		return "", fmt.Errorf("%w: %s is empty", reconcile.ErrInvalidUpload, up.Filename)
	}
	if int64(len(up.Data)) > s.maxSize {
		return "", fmt.Errorf("%w: %s exceeds %s", reconcile.ErrInvalidUpload, up.Filename, units.BytesSize(float64(s.maxSize)))
	}

	// The declared type is not trusted; the bytes decide.
	contentType := mimetype.Detect(up.Data).String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	ext, ok := AllowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s has unsupported type %s", reconcile.ErrInvalidUpload, up.Filename, contentType)
	}

	key := path.Join(strings.Trim(folder, "/"), uuid.NewString()+ext)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(up.Data), int64(len(up.Data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", up.Filename, err)
	}

	ref := s.RefFor(key)
	s.logger.Debug("Uploaded image", zap.String("key", key), zap.Int("size", len(up.Data)))
	return ref, nil
}

// Delete removes the object behind ref. Refs outside the bucket and missing
// objects yield reconcile.ErrObjectNotFound.
func (s *ImageStore) Delete(ctx context.Context, ref reconcile.ImageRef) error {
	key, ok := s.KeyFor(ref)
	if !ok {
		return fmt.Errorf("%w: %s is not stored in bucket %s", reconcile.ErrObjectNotFound, ref, s.bucket)
	}

	// RemoveObject succeeds silently for missing keys, so look first.
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("%w: %s", reconcile.ErrObjectNotFound, key)
		}
		return fmt.Errorf("failed to stat %s: %w", key, err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("%w: %s", reconcile.ErrObjectNotFound, key)
		}
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}

	s.logger.Debug("Deleted image", zap.String("key", key))
	return nil
}

// RefFor returns the public URL of an object key.
func (s *ImageStore) RefFor(key string) reconcile.ImageRef {
	return s.baseURL + "/" + strings.TrimPrefix(key, "/")
}

// KeyFor resolves a ref to an object key of this bucket.
// Refs may be public URLs of the bucket or bare object keys.
func (s *ImageStore) KeyFor(ref reconcile.ImageRef) (string, bool) {
	if strings.HasPrefix(ref, s.baseURL+"/") {
		key := strings.TrimPrefix(ref, s.baseURL+"/")
		return key, key != ""
	}
	if ref == "" || strings.Contains(ref, "://") {
		return "", false
	}
	return strings.TrimPrefix(ref, "/"), true
}

// ListKeys returns every object key under prefix, folder markers excluded.
func (s *ImageStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    strings.TrimSuffix(prefix, "/") + "/",
		Recursive: true,
	}

	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// RemoveKeys deletes keys in bulk and returns the keys that could not be removed.
func (s *ImageStore) RemoveKeys(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	var failed []string
	var errs []error
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		failed = append(failed, rerr.ObjectName)
		errs = append(errs, fmt.Errorf("%s: %w", rerr.ObjectName, rerr.Err))
	}
	return failed, errors.Join(errs...)
}

// IsNotFound reports whether err is a storage "no such key" response.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
