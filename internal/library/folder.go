package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/kozaktomas/trip-albums/internal/album"
	"github.com/kozaktomas/trip-albums/internal/geo"
)

// imageExtensions lists file extensions the folder scanner picks up.
// EXIF parsing only works for JPEG and TIFF containers anyway.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// FolderProvider scans a local directory tree for geotagged photos.
// Asset IDs are paths relative to the root, so they stay stable across
// machines that mount the library at different locations.
type FolderProvider struct {
	root string
}

// NewFolderProvider creates a provider rooted at the given directory.
func NewFolderProvider(root string) (*FolderProvider, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open library folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library path %s is not a directory", root)
	}
	return &FolderProvider{root: root}, nil
}

// ListAssets walks the library and returns every photo that carries
// both a GPS position and a capture time in its EXIF block. Photos
// without either are silently skipped; they cannot be placed on a
// trip timeline.
func (f *FolderProvider) ListAssets(ctx context.Context) ([]album.PhotoAsset, error) {
	var assets []album.PhotoAsset

	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			// Hidden directories hold sidecar caches, not photos.
			if strings.HasPrefix(d.Name(), ".") && path != f.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		asset, ok := f.readAsset(path)
		if !ok {
			return nil
		}
		assets = append(assets, asset)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan library folder: %w", err)
	}

	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].Timestamp.Before(assets[j].Timestamp)
	})

	return assets, nil
}

// readAsset parses the EXIF block of a single file. Returns false when
// the file has no usable EXIF, position or capture time.
func (f *FolderProvider) readAsset(path string) (album.PhotoAsset, bool) {
	file, err := os.Open(path)
	if err != nil {
		return album.PhotoAsset{}, false
	}
	defer file.Close()

	meta, err := exif.Decode(file)
	if err != nil {
		return album.PhotoAsset{}, false
	}

	lat, lon, err := meta.LatLong()
	if err != nil {
		return album.PhotoAsset{}, false
	}

	taken, err := meta.DateTime()
	if err != nil {
		return album.PhotoAsset{}, false
	}

	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		rel = path
	}

	return album.PhotoAsset{
		ID:        filepath.ToSlash(rel),
		Location:  geo.Coordinate{Lat: lat, Lon: lon},
		Timestamp: taken,
	}, true
}

// FetchImage reads the image bytes for an asset listed earlier.
func (f *FolderProvider) FetchImage(ctx context.Context, assetID string) ([]byte, error) {
	path := filepath.Join(f.root, filepath.FromSlash(assetID))

	// Asset IDs come from ListAssets, but guard against escapes anyway.
	if rel, err := filepath.Rel(f.root, path); err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("asset %s is outside the library folder", assetID)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %s: %w", assetID, err)
	}
	return data, nil
}
