package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/audit"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/facematch"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <name> <image>",
	Short: "Verify a face photo against a claimed identity",
	Long: `Compare a face photo against one enrolled person only. Unlike
recognize, other enrolled people are ignored; the claim stands or falls on
the named entry's distance.

Exits 0 on MATCH, 2 on NO_MATCH, 1 when the name is not enrolled.

Example:
  facegate verify alice ./snapshot.jpg`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	name := args[0]
	imagePath := args[1]

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

	verification, err := facematch.Verify(entries, name, probe, cfg.Match.Threshold)
	if err != nil {
		if errors.Is(err, database.ErrUnknownIdentity) {
			names, namesErr := store.Names(ctx)
			if namesErr == nil {
				if hint := facematch.Suggest(names, name); hint != "" {
					return fmt.Errorf("'%s' is not enrolled (did you mean '%s'?)", name, hint)
				}
			}
			return fmt.Errorf("'%s' is not enrolled", name)
		}
		return fmt.Errorf("failed to verify: %w", err)
	}

	auditLog := openAudit(cfg)
	defer auditLog.Close()
	if err := auditLog.Record(audit.Event{
		Kind:     audit.KindVerify,
		Subject:  name,
		Distance: verification.Distance,
		Verdict:  verification.Outcome(),
		Source:   imagePath,
	}); err != nil {
		fmt.Printf("Warning: audit write failed: %v\n", err)
	}

	fmt.Printf("%s: %s (distance %.4f, threshold %.4f)\n",
		name, verification.Outcome(), verification.Distance, cfg.Match.Threshold)

	if !verification.Match {
		exitCode = 2
	}
	return nil
}
