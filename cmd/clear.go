package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all people from the database",
	Long: `Remove every enrolled person from the database. This also resets the
encoding dimensionality, so the next enrollment may use a different model.

Example:
  facegate clear --yes`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
}

func confirmAction(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func runClear(cmd *cobra.Command, args []string) error {
	skipConfirm := mustGetBool(cmd, "yes")

	cfg := loadConfig(cmd)
	ctx := context.Background()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count entries: %w", err)
	}
	if count == 0 {
		fmt.Println("Database is already empty.")
		return nil
	}

	if !skipConfirm && !confirmAction(fmt.Sprintf("Remove all %d enrolled people? [y/N]: ", count)) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}
	if err := store.Save(ctx); err != nil {
		return fmt.Errorf("failed to save database: %w", err)
	}

	fmt.Printf("Removed %d people.\n", count)
	return nil
}
