package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/trip-albums/internal/config"
	"github.com/kozaktomas/trip-albums/internal/store"
	"github.com/kozaktomas/trip-albums/internal/store/postgres"
)

var albumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "List stored trip albums",
	Long:  `Retrieves and displays all albums stored in the database.`,
	RunE:  runAlbums,
}

var albumsShowCmd = &cobra.Command{
	Use:   "show <album-id>",
	Short: "Show the full structure of one album",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlbumsShow,
}

var albumsDeleteCmd = &cobra.Command{
	Use:   "delete <album-id>",
	Short: "Delete an album",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlbumsDelete,
}

func init() {
	rootCmd.AddCommand(albumsCmd)
	albumsCmd.AddCommand(albumsShowCmd)
	albumsCmd.AddCommand(albumsDeleteCmd)

	albumsCmd.Flags().Bool("json", false, "Output as JSON")
	albumsShowCmd.Flags().Bool("json", false, "Output as JSON")
}

// openAlbumStore connects to the configured database.
func openAlbumStore() (store.AlbumStore, func(), error) {
	cfg := config.Load()
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres.NewAlbumRepository(pool), func() { pool.Close() }, nil
}

func runAlbums(cmd *cobra.Command, args []string) error {
	asJSON := mustGetBool(cmd, "json")

	albums, closeStore, err := openAlbumStore()
	if err != nil {
		return err
	}
	defer closeStore()

	summaries, err := albums.ListAlbums(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list albums: %w", err)
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No albums found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDATES\tDAYS\tMOMENTS")
	fmt.Fprintln(w, "--\t-----\t-----\t----\t-------")

	for _, s := range summaries {
		dates := s.StartDate
		if s.EndDate != "" && s.EndDate != s.StartDate {
			dates += " – " + s.EndDate
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", s.ID, s.Title, dates, s.Days, s.Moments)
	}

	w.Flush()

	fmt.Printf("\nTotal: %d albums\n", len(summaries))

	return nil
}

func runAlbumsShow(cmd *cobra.Command, args []string) error {
	asJSON := mustGetBool(cmd, "json")

	albums, closeStore, err := openAlbumStore()
	if err != nil {
		return err
	}
	defer closeStore()

	alb, err := albums.GetAlbum(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load album: %w", err)
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(alb)
	}

	fmt.Printf("%s\n", alb.Title)
	for _, day := range alb.Days {
		fmt.Printf("\n%s — %s\n", day.Date, day.Summary)
		for _, moment := range day.Moments {
			fmt.Printf("  %s  %s", moment.TimeLabel, moment.Name)
			if moment.Caption != "" {
				fmt.Printf("  (%s)", moment.Caption)
			}
			fmt.Println()
			for _, highlight := range moment.Highlights {
				fmt.Printf("    highlight: %d photos (cover %s)\n",
					len(highlight.AssetIDs), highlight.RepresentativeAssetID)
			}
			if len(moment.OptionalAssetIDs) > 0 {
				fmt.Printf("    +%d more photos\n", len(moment.OptionalAssetIDs))
			}
		}
	}

	return nil
}

func runAlbumsDelete(cmd *cobra.Command, args []string) error {
	albums, closeStore, err := openAlbumStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := albums.DeleteAlbum(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete album: %w", err)
	}

	fmt.Printf("Deleted album %s\n", args[0])
	return nil
}
