package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/trip-albums/internal/store"
	"github.com/kozaktomas/trip-albums/internal/web/handlers"
)

func (s *Server) setupRoutes(albums store.AlbumStore, index *store.PhotoIndex) {
	albumsHandler := handlers.NewAlbumsHandler(albums, s.logger)
	photosHandler := handlers.NewPhotosHandler(index, s.logger)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/albums", albumsHandler.List)
		r.Get("/albums/{id}", albumsHandler.Get)
		r.Delete("/albums/{id}", albumsHandler.Delete)

		r.Post("/photos/similar", photosHandler.FindSimilar)
	})
}
