package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kozaktomas/trip-albums/internal/album"
	"github.com/kozaktomas/trip-albums/internal/caption"
	"github.com/kozaktomas/trip-albums/internal/config"
	"github.com/kozaktomas/trip-albums/internal/embedding"
	"github.com/kozaktomas/trip-albums/internal/library"
	"github.com/kozaktomas/trip-albums/internal/places"
	"github.com/kozaktomas/trip-albums/internal/store"
	"github.com/kozaktomas/trip-albums/internal/store/postgres"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build trip albums from the photo library",
	Long: `Build scans the photo library, splits it into trips, clusters each trip
into place visits, ranks nearby place candidates against the visit's
cover photo, groups near-duplicate shots into highlights, and assembles
the day-by-day album structure.

Albums are stored in the configured database, or printed as JSON with
--output when no database is available.`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("source", "folder", "Asset source: folder, photoprism")
	buildCmd.Flags().Float64("spatial-threshold", 0, "Moment clustering distance threshold in meters (0 = default)")
	buildCmd.Flags().Int("temporal-threshold", 0, "Moment clustering time threshold in seconds (0 = default)")
	buildCmd.Flags().Float64("similarity-threshold", 0, "Highlight grouping cosine similarity threshold (0 = default)")
	buildCmd.Flags().String("captions", "", "Caption provider: openai, gemini (empty = no captions)")
	buildCmd.Flags().String("output", "", "Write resulting albums as JSON to this file")
	buildCmd.Flags().Bool("verbose", false, "Enable debug logging")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	sourceName := mustGetString(cmd, "source")
	spatial := mustGetFloat64(cmd, "spatial-threshold")
	temporal := mustGetInt(cmd, "temporal-threshold")
	similarity := mustGetFloat64(cmd, "similarity-threshold")
	captionProvider := mustGetString(cmd, "captions")
	outputPath := mustGetString(cmd, "output")
	verbose := mustGetBool(cmd, "verbose")

	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	// Set up context with signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal...")
		cancel()
	}()

	source, closeSource, err := newAssetSource(cfg, sourceName)
	if err != nil {
		return err
	}
	defer closeSource()

	embedder := embedding.NewClient(cfg.Embedding.URL)

	var lookup places.Provider
	if cfg.Places.URL != "" || cfg.Places.APIKey != "" {
		lookup = places.NewClient(cfg.Places.URL, cfg.Places.APIKey)
	} else {
		fmt.Println("Warning: no places service configured, moments will be unnamed")
	}

	pipeline := album.NewPipeline(source, embedder, lookup, logger)

	var captions caption.Provider
	if captionProvider != "" {
		captions, err = newCaptionProvider(ctx, cfg, captionProvider)
		if err != nil {
			return err
		}
		pipeline.SetCaptionProvider(captions)
	}

	// Optional database: persistent embedding cache plus album storage.
	var albumStore store.AlbumStore
	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := pool.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		pipeline.SetEmbeddingCache(postgres.NewEmbeddingRepository(pool, cfg.Embedding.Dim))
		albumStore = postgres.NewAlbumRepository(pool)
	}

	bar := newProgressBar()
	result, err := pipeline.Run(ctx, album.RunOptions{
		SpatialThresholdMeters: spatial,
		TemporalThresholdSecs:  temporal,
		SimilarityThreshold:    similarity,
		OnProgress: func(info album.ProgressInfo) {
			bar.Describe(info.Phase)
			if info.Total > 0 {
				bar.ChangeMax(info.Total)
				bar.Set(info.Current)
			}
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("album build failed: %w", err)
	}
	bar.Finish()
	fmt.Println()

	if result == nil {
		return nil
	}

	fmt.Printf("Processed: %d photos in %d trips\n", result.ProcessedAssets, result.ProcessedTrips)
	fmt.Printf("Albums: %d\n", len(result.Albums))
	for _, alb := range result.Albums {
		moments := 0
		for _, day := range alb.Days {
			moments += len(day.Moments)
		}
		fmt.Printf("  %s (%d days, %d moments)\n", alb.Title, len(alb.Days), moments)
	}

	if captions != nil {
		usage := captions.GetUsage()
		fmt.Printf("Caption usage (%s): %d input + %d output tokens, $%.4f\n",
			captions.Name(), usage.InputTokens, usage.OutputTokens, usage.TotalCost)
	}

	if albumStore != nil {
		for _, alb := range result.Albums {
			if err := albumStore.SaveAlbum(ctx, alb); err != nil {
				logger.Error("failed to save album", zap.String("id", alb.ID), zap.Error(err))
			}
		}
	}

	if outputPath != "" {
		data, err := json.MarshalIndent(result.Albums, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal albums: %w", err)
		}
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Printf("Wrote %s\n", outputPath)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nDegraded steps: %d\n", len(result.Errors))
		for _, err := range result.Errors {
			fmt.Printf("  - %v\n", err)
		}
	}

	return err
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func newAssetSource(cfg *config.Config, name string) (library.Provider, func(), error) {
	switch name {
	case "folder":
		if cfg.Library.Path == "" {
			return nil, nil, errors.New("LIBRARY_PATH environment variable is required for the folder source")
		}
		provider, err := library.NewFolderProvider(cfg.Library.Path)
		if err != nil {
			return nil, nil, err
		}
		return provider, func() {}, nil
	case "photoprism":
		provider, err := library.NewPhotoPrismProvider(cfg.PhotoPrism.DatabaseURL, cfg.PhotoPrism.OriginalsPath)
		if err != nil {
			return nil, nil, err
		}
		return provider, func() { provider.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown source: %s (supported: folder, photoprism)", name)
	}
}

func newCaptionProvider(ctx context.Context, cfg *config.Config, name string) (caption.Provider, error) {
	switch name {
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required")
		}
		pricing := cfg.GetModelPricing("gpt-4.1-mini")
		return caption.NewOpenAIProvider(cfg.OpenAI.Token,
			caption.RequestPricing{Input: pricing.Input, Output: pricing.Output}), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required")
		}
		pricing := cfg.GetModelPricing("gemini-2.5-flash")
		provider, err := caption.NewGeminiProvider(ctx, cfg.Gemini.APIKey,
			caption.RequestPricing{Input: pricing.Input, Output: pricing.Output})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown caption provider: %s (supported: openai, gemini)", name)
	}
}

func newProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(1,
		progressbar.OptionSetDescription("Starting"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
