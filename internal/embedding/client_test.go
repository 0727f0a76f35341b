package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestClient_EncodeImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/image" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "bad multipart", http.StatusBadRequest)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"dim": 3, "embedding": [0.1, 0.2, 0.3], "model": "clip"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	vec, err := client.EncodeImage(context.Background(), testJPEG(t, 64, 48))
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("got %d dimensions; want 3", len(vec))
	}
	if vec[0] != 0.1 {
		t.Errorf("vec[0] = %f; want 0.1", vec[0])
	}
}

func TestClient_EncodeImage_EmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dim": 0, "embedding": [], "model": "clip"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.EncodeImage(context.Background(), testJPEG(t, 10, 10)); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}

func TestClient_EncodeTextBatch(t *testing.T) {
	var gotTexts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/text/batch" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var req struct {
			Texts []string `json:"texts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		gotTexts = req.Texts

		resp := map[string]any{
			"dim":        2,
			"embeddings": make([][]float32, 0, len(req.Texts)),
			"model":      "clip",
		}
		embeddings := make([][]float32, len(req.Texts))
		for i := range req.Texts {
			embeddings[i] = []float32{float32(i), 1}
		}
		resp["embeddings"] = embeddings
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	prompts := []string{"a photo taken at a museum", "a photo taken at a cafe"}
	vectors, err := client.EncodeTextBatch(context.Background(), prompts)
	if err != nil {
		t.Fatalf("EncodeTextBatch failed: %v", err)
	}

	if len(gotTexts) != 2 {
		t.Fatalf("server received %d texts; want 2", len(gotTexts))
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors; want 2", len(vectors))
	}
	// Order-preserving: vector i corresponds to prompt i.
	if vectors[0][0] != 0 || vectors[1][0] != 1 {
		t.Errorf("vectors out of order: %v", vectors)
	}
}

func TestClient_EncodeTextBatch_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dim": 2, "embeddings": [[1, 2]], "model": "clip"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.EncodeTextBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error for embedding count mismatch")
	}
}

func TestClient_EncodeTextBatch_EmptyPrompts(t *testing.T) {
	client := NewClient("http://localhost:1") // must never be contacted
	vectors, err := client.EncodeTextBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EncodeTextBatch failed: %v", err)
	}
	if vectors != nil {
		t.Errorf("expected nil for empty prompts, got %v", vectors)
	}
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.EncodeImage(context.Background(), testJPEG(t, 10, 10)); err == nil {
		t.Fatal("expected error for unavailable provider")
	}
}

func TestResizeImage(t *testing.T) {
	large := testJPEG(t, 1600, 1200)

	resized, err := ResizeImage(large, 800)
	if err != nil {
		t.Fatalf("ResizeImage failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(resized))
	if err != nil {
		t.Fatalf("failed to decode resized image: %v", err)
	}
	if w := img.Bounds().Dx(); w != 800 {
		t.Errorf("width = %d; want 800", w)
	}
	if h := img.Bounds().Dy(); h != 600 {
		t.Errorf("height = %d; want 600 (aspect preserved)", h)
	}
}

func TestResizeImage_SmallImageUntouched(t *testing.T) {
	small := testJPEG(t, 100, 80)

	resized, err := ResizeImage(small, 800)
	if err != nil {
		t.Fatalf("ResizeImage failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(resized))
	if err != nil {
		t.Fatalf("failed to decode image: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 80 {
		t.Errorf("dimensions changed: %v", img.Bounds())
	}
}
