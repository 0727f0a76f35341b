package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kozaktomas/trip-albums/internal/album"
	"github.com/kozaktomas/trip-albums/internal/store"
)

// AlbumsHandler serves stored trip albums.
type AlbumsHandler struct {
	store  store.AlbumStore
	logger *zap.Logger
}

// NewAlbumsHandler creates a new albums handler.
func NewAlbumsHandler(s store.AlbumStore, logger *zap.Logger) *AlbumsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlbumsHandler{store: s, logger: logger}
}

// List returns summaries of all stored albums. An optional ?q= filters
// by title substring, diacritic- and case-insensitive.
func (h *AlbumsHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.ListAlbums(r.Context())
	if err != nil {
		h.logger.Error("failed to list albums", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list albums")
		return
	}

	if q := r.URL.Query().Get("q"); q != "" {
		summaries = filterByTitle(summaries, q)
	}

	if summaries == nil {
		summaries = []store.AlbumSummary{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"albums": summaries})
}

func filterByTitle(summaries []store.AlbumSummary, query string) []store.AlbumSummary {
	needle := album.NormalizePlaceName(query)
	var matched []store.AlbumSummary
	for _, summary := range summaries {
		if strings.Contains(album.NormalizePlaceName(summary.Title), needle) {
			matched = append(matched, summary)
		}
	}
	return matched
}

// Get returns the full album structure.
func (h *AlbumsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	alb, err := h.store.GetAlbum(r.Context(), id)
	if errors.Is(err, store.ErrAlbumNotFound) {
		respondError(w, http.StatusNotFound, "album not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load album", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load album")
		return
	}

	respondJSON(w, http.StatusOK, alb)
}

// Delete removes an album.
func (h *AlbumsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.store.DeleteAlbum(r.Context(), id)
	if errors.Is(err, store.ErrAlbumNotFound) {
		respondError(w, http.StatusNotFound, "album not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete album", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete album")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
