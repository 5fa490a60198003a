package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/audit"
	"github.com/facegate/facegate/internal/facematch"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Decide access for a face photo",
	Long: `Identify the person on a face photo against the whole database and
decide access. The closest enrolled encoding wins; access is granted only
when its distance falls strictly under the threshold.

Exits 0 when access is granted, 2 when denied.

Example:
  facegate recognize ./snapshot.jpg
  facegate recognize ./snapshot.jpg --threshold 9.5`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)
}

func runRecognize(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	cfg := loadConfig(cmd)
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

	result, err := facematch.FindBest(entries, probe)
	if err != nil {
		return fmt.Errorf("failed to match: %w", err)
	}
	verdict := facematch.Decide(result, cfg.Match.Threshold)

	auditLog := openAudit(cfg)
	defer auditLog.Close()
	if err := auditLog.Record(audit.Event{
		Kind:     audit.KindRecognize,
		Subject:  result.Name,
		Distance: result.Distance,
		Verdict:  verdict.String(),
		Source:   imagePath,
	}); err != nil {
		fmt.Printf("Warning: audit write failed: %v\n", err)
	}

	if result.Found() {
		fmt.Printf("Best match: %s (distance %.4f, threshold %.4f)\n", result.Name, result.Distance, cfg.Match.Threshold)
	} else {
		fmt.Println("Database is empty; no candidates.")
	}
	fmt.Printf("Access %s\n", verdict)

	if verdict != facematch.VerdictGranted {
		exitCode = 2
	}
	return nil
}
