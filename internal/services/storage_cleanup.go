package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
)

// StorageCleanupService deletes taken-down content's images from the storage
// bucket. Cleanup is best effort: a leftover object is an orphan, not a
// moderation failure, so failures are logged and skipped.
type StorageCleanupService struct {
	gcs    *storage.Client
	bucket string
}

// NewStorageCleanupService creates a storage client once at startup.
func NewStorageCleanupService(ctx context.Context, bucket string) (*StorageCleanupService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage cleanup: storage client: %w", err)
	}
	return &StorageCleanupService{gcs: client, bucket: bucket}, nil
}

// DeleteImages removes the given download URLs' objects from the bucket.
func (s *StorageCleanupService) DeleteImages(ctx context.Context, urls []string) {
	for _, u := range urls {
		name := objectNameFromURL(u, s.bucket)
		if name == "" {
			log.Printf("[StorageCleanup] skipping unrecognized URL %q", u)
			continue
		}
		if err := s.gcs.Bucket(s.bucket).Object(name).Delete(ctx); err != nil {
			if err == storage.ErrObjectNotExist {
				continue
			}
			log.Printf("[StorageCleanup] delete failed object=%s err=%v", name, err)
			continue
		}
		log.Printf("[StorageCleanup] deleted object=%s", name)
	}
}

// objectNameFromURL reverses the Firebase download URL shape
// (https://firebasestorage.googleapis.com/v0/b/{bucket}/o/{path}?alt=media&...)
// back to the object name. Bare object paths pass through unchanged.
func objectNameFromURL(raw, bucket string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	marker := fmt.Sprintf("/v0/b/%s/o/", bucket)
	idx := strings.Index(parsed.Path, marker)
	if idx < 0 {
		return ""
	}
	escaped := parsed.Path[idx+len(marker):]
	name, err := url.PathUnescape(escaped)
	if err != nil {
		return ""
	}
	return name
}
