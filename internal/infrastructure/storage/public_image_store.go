package storage

import (
	"context"
	"strings"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
)

// PublicImageStore resolves image keys against a static base URL. It is
// used when object storage is disabled and images are served by a CDN or
// the web server.
type PublicImageStore struct {
	BaseURL string
}

var _ appcatalog.ImageResolver = (*PublicImageStore)(nil)

// NewPublicImageStore creates a PublicImageStore
func NewPublicImageStore(baseURL string) *PublicImageStore {
	return &PublicImageStore{BaseURL: strings.TrimRight(baseURL, "/")}
}

// ImageURL joins the base URL and key. Keys that are already absolute URLs
// are returned unchanged.
func (s *PublicImageStore) ImageURL(_ context.Context, key string) string {
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	if s.BaseURL == "" {
		return "/" + strings.TrimLeft(key, "/")
	}
	return s.BaseURL + "/" + strings.TrimLeft(key, "/")
}
