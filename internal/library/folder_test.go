package library

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func writeJPEG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestNewFolderProvider_Validation(t *testing.T) {
	if _, err := NewFolderProvider(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing folder")
	}

	file := filepath.Join(t.TempDir(), "file.jpg")
	writeJPEG(t, file)
	if _, err := NewFolderProvider(file); err == nil {
		t.Error("expected error for non-directory path")
	}
}

func TestFolderProvider_SkipsUntaggedPhotos(t *testing.T) {
	dir := t.TempDir()

	// Plain JPEGs without EXIF cannot be placed on a timeline.
	writeJPEG(t, filepath.Join(dir, "untagged.jpg"))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a photo"), 0o644); err != nil {
		t.Fatal(err)
	}

	provider, err := NewFolderProvider(dir)
	if err != nil {
		t.Fatalf("NewFolderProvider failed: %v", err)
	}

	assets, err := provider.ListAssets(context.Background())
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("got %d assets; want 0", len(assets))
	}
}

func TestFolderProvider_SkipsHiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	hidden := filepath.Join(dir, ".cache")
	if err := os.MkdirAll(hidden, 0o755); err != nil {
		t.Fatal(err)
	}
	writeJPEG(t, filepath.Join(hidden, "thumb.jpg"))

	provider, err := NewFolderProvider(dir)
	if err != nil {
		t.Fatalf("NewFolderProvider failed: %v", err)
	}

	assets, err := provider.ListAssets(context.Background())
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("hidden directory was scanned: %v", assets)
	}
}

func TestFolderProvider_FetchImage(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "2024", "05")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeJPEG(t, filepath.Join(sub, "photo.jpg"))

	provider, err := NewFolderProvider(dir)
	if err != nil {
		t.Fatalf("NewFolderProvider failed: %v", err)
	}

	data, err := provider.FetchImage(context.Background(), "2024/05/photo.jpg")
	if err != nil {
		t.Fatalf("FetchImage failed: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("fetched bytes are not a valid jpeg: %v", err)
	}

	if _, err := provider.FetchImage(context.Background(), "../outside.jpg"); err == nil {
		t.Error("expected error for path escaping the library root")
	}

	if _, err := provider.FetchImage(context.Background(), "missing.jpg"); err == nil {
		t.Error("expected error for missing asset")
	}
}
