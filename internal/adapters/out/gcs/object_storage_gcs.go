// internal/adapters/out/gcs/object_storage_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"

	uc "storefront/internal/application/usecase"
)

const defaultPublicBaseURL = "https://storage.googleapis.com"

// ObjectStorageGCS implements usecase.ObjectStorage (avatars, product images).
// Objects are served through the public URL, so the bucket must be publicly readable.
type ObjectStorageGCS struct {
	Client        *storage.Client
	Bucket        string
	PublicBaseURL string
}

func NewObjectStorageGCS(client *storage.Client, bucket string) *ObjectStorageGCS {
	return &ObjectStorageGCS{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: defaultPublicBaseURL,
	}
}

func (r *ObjectStorageGCS) bucket() (*storage.BucketHandle, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("ObjectStorageGCS: nil storage client")
	}
	if r.Bucket == "" {
		return nil, errors.New("ObjectStorageGCS: bucket is empty")
	}
	return r.Client.Bucket(r.Bucket), nil
}

func (r *ObjectStorageGCS) Put(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	bh, err := r.bucket()
	if err != nil {
		return "", err
	}
	objectName = cleanObjectName(objectName)
	if objectName == "" {
		return "", errors.New("ObjectStorageGCS: object name is empty")
	}

	w := bh.Object(objectName).NewWriter(ctx)
	w.ContentType = strings.TrimSpace(contentType)
	w.CacheControl = "public, max-age=300"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs: write %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs: close %s: %w", objectName, err)
	}
	return r.PublicURL(objectName), nil
}

func (r *ObjectStorageGCS) Get(ctx context.Context, objectName string) ([]byte, string, error) {
	bh, err := r.bucket()
	if err != nil {
		return nil, "", err
	}
	rd, err := bh.Object(cleanObjectName(objectName)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, "", uc.ErrObjectNotFound
		}
		return nil, "", err
	}
	defer rd.Close()

	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, "", err
	}
	return data, rd.Attrs.ContentType, nil
}

// PublicURL encodes each path segment but keeps "/" separators.
func (r *ObjectStorageGCS) PublicURL(objectName string) string {
	base := strings.TrimSpace(r.PublicBaseURL)
	if base == "" {
		base = defaultPublicBaseURL
	}
	parts := strings.Split(cleanObjectName(objectName), "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), r.Bucket, strings.Join(parts, "/"))
}

func cleanObjectName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimLeft(name, "/")
}
