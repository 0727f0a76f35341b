package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kozaktomas/trip-albums/internal/config"
	"github.com/kozaktomas/trip-albums/internal/store"
	"github.com/kozaktomas/trip-albums/internal/store/postgres"
	"github.com/kozaktomas/trip-albums/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the album API over HTTP",
	Long: `Serve exposes the stored albums as a read-only JSON API, plus a
similar-photo search over the cached embeddings.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Bool("verbose", false, "Enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")
	verbose := mustGetBool(cmd, "verbose")

	cfg := config.Load()

	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var albums store.AlbumStore
	var index *store.PhotoIndex

	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := pool.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		albums = postgres.NewAlbumRepository(pool)

		// The photo index is best effort; the API runs without it.
		embeddings := postgres.NewEmbeddingRepository(pool, cfg.Embedding.Dim)
		assets, err := embeddings.GetAll(ctx)
		if err != nil {
			logger.Warn("failed to load embedding cache", zap.Error(err))
		} else if len(assets) > 0 {
			index = store.NewPhotoIndex()
			if err := index.Build(assets); err != nil {
				logger.Warn("failed to build photo index", zap.Error(err))
				index = nil
			} else {
				logger.Info("photo index ready", zap.Int("photos", index.Count()))
			}
		}
	} else {
		logger.Warn("no database configured, serving an empty in-memory store")
		albums = store.NewMemoryStore()
	}

	server := web.NewServer(albums, index, port, host, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
