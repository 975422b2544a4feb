package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/LabelScan-Intelligence/internal/domain/catalog"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// CatalogSource reads a catalog document from the catalog bucket.  The format
// is inferred from the object key extension.
type CatalogSource struct {
	client *Client
	bucket string
	key    string
}

// NewCatalogSource returns a source for key in the client's catalog bucket.
func NewCatalogSource(client *Client, key string) *CatalogSource {
	return &CatalogSource{client: client, bucket: client.CatalogBucket(), key: key}
}

// Fetch implements catalog.Source.
func (s *CatalogSource) Fetch(ctx context.Context) ([]byte, catalog.Format, error) {
	format, err := catalog.FormatFromPath(s.key)
	if err != nil {
		return nil, "", err
	}
	api, err := s.client.API()
	if err != nil {
		return nil, "", err
	}

	obj, err := api.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", s.wrap(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", s.wrap(err)
	}
	return data, format, nil
}

// Describe implements catalog.Source.
func (s *CatalogSource) Describe() string {
	return "minio://" + s.bucket + "/" + s.key
}

// Publish uploads a catalog document to the source's key.  The document is
// parsed and validated first so a broken catalog never reaches the bucket.
func (s *CatalogSource) Publish(ctx context.Context, data []byte) (*catalog.Catalog, error) {
	format, err := catalog.FormatFromPath(s.key)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Parse(data, format)
	if err != nil {
		return nil, err
	}
	if err := catalog.ValidationError(cat.Validate()); err != nil {
		return nil, err
	}

	api, err := s.client.API()
	if err != nil {
		return nil, err
	}
	contentType := "application/yaml"
	if format == catalog.FormatJSON {
		contentType = "application/json"
	}
	_, err = api.PutObject(ctx, s.bucket, s.key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"catalog-version": cat.Version()},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to upload catalog").WithDetail(s.Describe())
	}
	return cat, nil
}

func (s *CatalogSource) wrap(err error) error {
	if isNotFound(err) {
		return errors.Wrap(err, errors.ErrCodeCatalogNotFound, "catalog object not found").WithDetail(s.Describe())
	}
	return errors.Wrap(err, errors.ErrCodeStorageError, "failed to read catalog object").WithDetail(s.Describe())
}

var _ catalog.Source = (*CatalogSource)(nil)

//Personal.AI order the ending
