package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maheshrc27/postcraft/internal/extract"
)

// PersistDataURI moves inline image data to the media store. The original
// value is returned when there is no store, the value is already a link, or
// the upload fails.
func PersistDataURI(ctx context.Context, store MediaStore, uri string) string {
	if store == nil || !strings.HasPrefix(uri, "data:") {
		return uri
	}

	data, mime, err := extract.DecodeDataURI(uri)
	if err != nil {
		slog.Warn("keeping inline image", "error", err)
		return uri
	}

	url, err := store.Store(ctx, data, mime)
	if err != nil {
		slog.Warn("media upload failed, keeping inline image", "error", err)
		return uri
	}
	return url
}
