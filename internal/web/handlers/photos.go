package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/kozaktomas/trip-albums/internal/store"
)

// PhotosHandler serves similarity search over the photo index.
type PhotosHandler struct {
	index  *store.PhotoIndex
	logger *zap.Logger
}

// NewPhotosHandler creates a new photos handler. index may be nil when
// no index has been built.
func NewPhotosHandler(index *store.PhotoIndex, logger *zap.Logger) *PhotosHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotosHandler{index: index, logger: logger}
}

type findSimilarRequest struct {
	AssetID string `json:"asset_id"`
	Limit   int    `json:"limit"`
}

type similarPhotoResponse struct {
	AssetID    string  `json:"asset_id"`
	Similarity float64 `json:"similarity"`
}

// FindSimilar returns photos most similar to a reference asset.
func (h *PhotosHandler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	if h.index == nil || h.index.Count() == 0 {
		respondError(w, http.StatusServiceUnavailable, "photo index not available")
		return
	}

	var req findSimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.AssetID == "" {
		respondError(w, http.StatusBadRequest, "asset_id is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	query := h.index.Embedding(req.AssetID)
	if query == nil {
		respondError(w, http.StatusNotFound, "asset not indexed")
		return
	}

	// Request one extra so the reference photo itself can be dropped.
	hits, err := h.index.Search(query, req.Limit+1)
	if err != nil {
		h.logger.Error("similarity search failed", zap.String("asset_id", req.AssetID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "similarity search failed")
		return
	}

	results := make([]similarPhotoResponse, 0, req.Limit)
	for _, hit := range hits {
		if hit.AssetID == req.AssetID {
			continue
		}
		results = append(results, similarPhotoResponse{AssetID: hit.AssetID, Similarity: hit.Similarity})
		if len(results) >= req.Limit {
			break
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{"results": results})
}
