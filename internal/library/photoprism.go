package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/kozaktomas/trip-albums/internal/album"
	"github.com/kozaktomas/trip-albums/internal/geo"
)

// PhotoPrismProvider reads geotagged photos out of a PhotoPrism MariaDB
// index. PhotoPrism has already parsed the EXIF, so listing a large
// library is a single query instead of a directory walk. Image bytes
// still come from the originals folder on disk.
type PhotoPrismProvider struct {
	db            *sql.DB
	originalsPath string
}

// NewPhotoPrismProvider opens a connection pool against the PhotoPrism
// database. originalsPath is the root of the PhotoPrism originals
// folder, used to serve image bytes.
func NewPhotoPrismProvider(dsn, originalsPath string) (*PhotoPrismProvider, error) {
	if dsn == "" {
		return nil, errors.New("PhotoPrism database DSN is required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PhotoPrism database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping PhotoPrism database: %w", err)
	}

	return &PhotoPrismProvider{db: db, originalsPath: originalsPath}, nil
}

// Close closes the connection pool.
func (p *PhotoPrismProvider) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// ListAssets returns every non-deleted photo with GPS coordinates and a
// capture time, ordered oldest first.
func (p *PhotoPrismProvider) ListAssets(ctx context.Context) ([]album.PhotoAsset, error) {
	query := `
		SELECT photo_uid, photo_lat, photo_lng, taken_at
		FROM photos
		WHERE deleted_at IS NULL
		  AND photo_lat != 0 AND photo_lng != 0
		  AND taken_at IS NOT NULL
		ORDER BY taken_at
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	var assets []album.PhotoAsset
	for rows.Next() {
		var (
			uid      string
			lat, lng float64
			takenAt  time.Time
		)
		if err := rows.Scan(&uid, &lat, &lng, &takenAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		assets = append(assets, album.PhotoAsset{
			ID:        uid,
			Location:  geo.Coordinate{Lat: lat, Lon: lng},
			Timestamp: takenAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return assets, nil
}

// FetchImage resolves the primary file for a photo and reads it from
// the originals folder.
func (p *PhotoPrismProvider) FetchImage(ctx context.Context, assetID string) ([]byte, error) {
	var fileName string
	query := `
		SELECT f.file_name
		FROM files f
		JOIN photos ph ON ph.id = f.photo_id
		WHERE ph.photo_uid = ? AND f.file_primary = 1 AND f.deleted_at IS NULL
		LIMIT 1
	`
	if err := p.db.QueryRowContext(ctx, query, assetID).Scan(&fileName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("photo %s has no primary file", assetID)
		}
		return nil, fmt.Errorf("query primary file: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(p.originalsPath, fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read original for %s: %w", assetID, err)
	}
	return data, nil
}
