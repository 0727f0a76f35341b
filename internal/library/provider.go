// Package library supplies photo assets to the album pipeline. A
// provider lists geotagged assets and serves their image bytes; the
// folder provider reads EXIF from local files while the PhotoPrism
// provider reads an existing PhotoPrism index.
package library

import (
	"context"

	"github.com/kozaktomas/trip-albums/internal/album"
)

// Provider enumerates the photo library and fetches image data for
// individual assets.
type Provider interface {
	ListAssets(ctx context.Context) ([]album.PhotoAsset, error)
	FetchImage(ctx context.Context, assetID string) ([]byte, error)
}

var (
	_ Provider = (*FolderProvider)(nil)
	_ Provider = (*PhotoPrismProvider)(nil)
)
