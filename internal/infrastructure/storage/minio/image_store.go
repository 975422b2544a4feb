package minio

import (
	"context"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	domainscan "github.com/turtacn/LabelScan-Intelligence/internal/domain/scan"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// MaxImageSize bounds uploaded label images.
const MaxImageSize = 10 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// ImageStore archives label photographs under "<owner>/<scan><ext>" in the
// image bucket.
type ImageStore struct {
	client *Client
	logger logging.Logger
}

// NewImageStore returns an ImageStore over client.
func NewImageStore(client *Client, log logging.Logger) *ImageStore {
	return &ImageStore{client: client, logger: log}
}

// ImageKey builds the object key of a scan image.
func ImageKey(ownerID, scanID, ext string) string {
	return path.Join(ownerID, scanID+ext)
}

// Put implements domainscan.ImageStore.
func (s *ImageStore) Put(ctx context.Context, ownerID, scanID string, img *domainscan.Image) (string, error) {
	if img == nil || img.Reader == nil {
		return "", errors.New(errors.ErrCodeValidation, "image required")
	}
	if img.Size <= 0 || img.Size > MaxImageSize {
		return "", errors.Newf(errors.ErrCodeValidation, "image size %d outside 1..%d bytes", img.Size, MaxImageSize)
	}
	contentType, ext, err := resolveImageType(img)
	if err != nil {
		return "", err
	}
	api, err := s.client.API()
	if err != nil {
		return "", err
	}

	key := ImageKey(ownerID, scanID, ext)
	opts := minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"owner-id": ownerID,
			"scan-id":  scanID,
		},
	}
	if img.Filename != "" {
		opts.UserMetadata["filename"] = path.Base(img.Filename)
	}
	info, err := api.PutObject(ctx, s.client.ImageBucket(), key, img.Reader, img.Size, opts)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to upload image").WithDetail(key)
	}
	s.logger.Debug("image archived",
		logging.String("key", key),
		logging.Int64("size", info.Size))
	return key, nil
}

// Delete implements domainscan.ImageStore.  Deleting a missing key succeeds.
func (s *ImageStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	api, err := s.client.API()
	if err != nil {
		return err
	}
	if err := api.RemoveObject(ctx, s.client.ImageBucket(), key, minio.RemoveObjectOptions{}); err != nil && !isNotFound(err) {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to delete image").WithDetail(key)
	}
	return nil
}

// PresignedURL implements domainscan.ImageStore.  A zero expiry uses the
// configured default.
func (s *ImageStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if key == "" {
		return "", errors.New(errors.ErrCodeValidation, "image key required")
	}
	if expiry <= 0 {
		expiry = s.client.cfg.PresignExpiry
	}
	api, err := s.client.API()
	if err != nil {
		return "", err
	}
	if _, err := api.StatObject(ctx, s.client.ImageBucket(), key, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return "", errors.Wrap(err, errors.ErrCodeNotFound, "image not found").WithDetail(key)
		}
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat image").WithDetail(key)
	}
	u, err := api.PresignedGetObject(ctx, s.client.ImageBucket(), key, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to presign image url").WithDetail(key)
	}
	return u.String(), nil
}

func resolveImageType(img *domainscan.Image) (string, string, error) {
	ct := strings.ToLower(strings.TrimSpace(img.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" && img.Filename != "" {
		ct = mime.TypeByExtension(strings.ToLower(path.Ext(img.Filename)))
	}
	ext, ok := allowedImageTypes[ct]
	if !ok {
		return "", "", errors.Newf(errors.ErrCodeValidation, "unsupported image type %q", ct)
	}
	return ct, ext, nil
}

var _ domainscan.ImageStore = (*ImageStore)(nil)

//Personal.AI order the ending
