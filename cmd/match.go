package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/facematch"
)

var matchCmd = &cobra.Command{
	Use:   "match <image>",
	Short: "List the closest enrolled candidates",
	Long: `Rank the enrolled people closest to a face photo without making an
access decision. Useful for tuning thresholds and inspecting near-misses.

By default candidates come from an exact scan. With --index the photo is
matched through an in-memory HNSW graph instead, which is worth building
only for large databases.

Example:
  facegate match ./snapshot.jpg
  facegate match ./snapshot.jpg --top-k 10 --index`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Int("top-k", 0, "Number of candidates to list (defaults to FACEGATE_TOP_K)")
	matchCmd.Flags().Bool("index", false, "Search through an HNSW index instead of an exact scan")
}

func runMatch(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	useIndex := mustGetBool(cmd, "index")

	cfg := loadConfig(cmd)
	k := mustGetInt(cmd, "top-k")
	if k <= 0 {
		k = cfg.Match.TopK
	}

	ctx := context.Background()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	fmt.Printf("Encoding %s...\n", imagePath)
	enc := newEncoder(cfg)
	probe, err := enc.EncodeFile(ctx, imagePath)
	if err != nil {
		return fmt.Errorf("failed to encode face: %w", err)
	}

	entries, err := store.Entries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No candidates (database is empty).")
		return nil
	}

	var matches []database.RankedMatch
	if useIndex {
		index := database.NewHNSWIndex()
		if err := index.Build(entries); err != nil {
			return fmt.Errorf("failed to build index: %w", err)
		}
		matches, err = index.Search(probe, k)
	} else {
		matches, err = facematch.FindTopK(entries, probe, k)
	}
	if err != nil {
		return fmt.Errorf("failed to match: %w", err)
	}

	fmt.Printf("Top %d candidate(s):\n", len(matches))
	for _, m := range matches {
		marker := " "
		if m.Distance < cfg.Match.Threshold {
			marker = "*"
		}
		fmt.Printf("%s %2d. %-24s %.4f\n", marker, m.Rank, m.Name, m.Distance)
	}
	fmt.Printf("\n* under threshold %.4f\n", cfg.Match.Threshold)
	return nil
}
