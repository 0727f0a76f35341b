package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/trip-albums/internal/config"
	"github.com/kozaktomas/trip-albums/internal/store"
	"github.com/kozaktomas/trip-albums/internal/store/postgres"
)

var similarCmd = &cobra.Command{
	Use:   "similar <asset-id>",
	Short: "Find photos similar to a reference photo",
	Long: `Find the photos most visually similar to a reference photo using the
cached CLIP embeddings. The search runs over an in-memory HNSW index
built from the embedding cache; with HNSW_INDEX_PATH set the index is
persisted between runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().Int("limit", 10, "Number of similar photos to return")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	assetID := args[0]
	limit := mustGetInt(cmd, "limit")

	cfg := config.Load()
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	embeddings := postgres.NewEmbeddingRepository(pool, cfg.Embedding.Dim)

	assets, err := embeddings.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load embeddings: %w", err)
	}
	if len(assets) == 0 {
		return fmt.Errorf("embedding cache is empty, run 'trip-albums build' first")
	}

	index := store.NewPhotoIndex()
	if err := index.Build(assets); err != nil {
		return fmt.Errorf("failed to build photo index: %w", err)
	}

	if cfg.Database.HNSWIndexPath != "" {
		if err := index.Save(cfg.Database.HNSWIndexPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save photo index: %v\n", err)
		}
	}

	query := index.Embedding(assetID)
	if query == nil {
		return fmt.Errorf("no embedding cached for asset %s", assetID)
	}

	// One extra so the reference photo can be dropped from its own results.
	hits, err := index.Search(query, limit+1)
	if err != nil {
		return fmt.Errorf("similarity search failed: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ASSET\tSIMILARITY")
	fmt.Fprintln(w, "-----\t----------")

	shown := 0
	for _, hit := range hits {
		if hit.AssetID == assetID {
			continue
		}
		fmt.Fprintf(w, "%s\t%.4f\n", hit.AssetID, hit.Similarity)
		shown++
		if shown >= limit {
			break
		}
	}

	w.Flush()

	return nil
}
