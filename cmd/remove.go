package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a person from the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg := loadConfig(cmd)
	ctx := context.Background()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	removed, err := store.Remove(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to remove: %w", err)
	}
	if !removed {
		fmt.Printf("'%s' is not enrolled.\n", name)
		return nil
	}

	if err := store.Save(ctx); err != nil {
		return fmt.Errorf("failed to save database: %w", err)
	}

	fmt.Printf("Removed '%s'\n", name)
	return nil
}
