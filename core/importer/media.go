package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"content-porter/core/document"
	"content-porter/core/storage"
	"content-porter/core/store"
)

// maxMediaBytes bounds a single media download.
const maxMediaBytes = 256 << 20

// MediaResolver maps exported media metadata back to media records.
// Matching is by content hash first, then by file name; only when neither
// matches is the binary fetched from the source URL and re-uploaded.
type MediaResolver struct {
	store   store.Store
	objects storage.Client
	bucket  string
	client  *http.Client
	logger  *zap.Logger
}

// NewMediaResolver creates a resolver. objects may be nil; unmatched media
// is then recorded with its source URL instead of being re-uploaded.
func NewMediaResolver(st store.Store, objects storage.Client, bucket string, timeout time.Duration, logger *zap.Logger) *MediaResolver {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MediaResolver{
		store:   st,
		objects: objects,
		bucket:  bucket,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Resolve returns the document identity of the media matching info,
// creating (and when configured, uploading) it if nothing matches.
func (r *MediaResolver) Resolve(ctx context.Context, info document.MediaInfo) (string, error) {
	if info.Hash != "" {
		media, err := r.store.FindMediaByHash(ctx, info.Hash)
		if err != nil {
			return "", err
		}
		if media != nil {
			return media.DocumentID, nil
		}
	}
	if info.Name != "" {
		media, err := r.store.FindMediaByName(ctx, info.Name)
		if err != nil {
			return "", err
		}
		if media != nil {
			return media.DocumentID, nil
		}
	}
	return r.create(ctx, info)
}

func (r *MediaResolver) create(ctx context.Context, info document.MediaInfo) (string, error) {
	if info.URL == "" {
		return "", fmt.Errorf("media %q has no url to fetch from", info.Name)
	}

	url := info.URL
	if r.objects != nil {
		data, err := r.fetch(ctx, info.URL)
		if err != nil {
			return "", err
		}
		objectName := r.objectName(info)
		_, err = r.objects.PutObject(ctx, r.bucket, objectName,
			bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
		if err != nil {
			return "", fmt.Errorf("upload media %s: %w", objectName, err)
		}
		url = "/" + objectName
		r.logger.Info("Uploaded imported media",
			zap.String("bucket", r.bucket),
			zap.String("object", objectName),
			zap.Int("bytes", len(data)),
		)
	}

	media, err := r.store.CreateMedia(ctx, &store.Media{
		Name:            info.Name,
		Hash:            info.Hash,
		URL:             url,
		AlternativeText: info.AlternativeText,
		Caption:         info.Caption,
	})
	if err != nil {
		return "", err
	}
	return media.DocumentID, nil
}

func (r *MediaResolver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch media %s: %w", url, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch media %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch media %s: %w", url, err)
	}
	return data, nil
}

// objectName derives a stable object key, preferring the content hash so
// re-imports of the same file land on the same object.
func (r *MediaResolver) objectName(info document.MediaInfo) string {
	if info.Hash != "" {
		if ext := path.Ext(info.Name); ext != "" {
			return info.Hash + ext
		}
		return info.Hash
	}
	return info.Name
}
