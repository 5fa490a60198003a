package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/database"
)

var addCmd = &cobra.Command{
	Use:   "add <name> <image>",
	Short: "Enroll a person from a face photo",
	Long: `Enroll a person by encoding a face photo and storing the encoding
under the given name. Names are case-sensitive; adding an existing name
replaces the stored encoding after confirmation.

Example:
  facegate add alice ./photos/alice.jpg
  facegate add alice ./photos/alice_new.jpg --yes`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().String("source", "", "Provenance note stored with the entry (defaults to the image path)")
	addCmd.Flags().Bool("yes", false, "Skip the overwrite confirmation prompt")
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	imagePath := args[1]
	source := mustGetString(cmd, "source")
	skipConfirm := mustGetBool(cmd, "yes")

	cfg := loadConfig(cmd)
	ctx := context.Background()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	existing, err := store.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check existing entry: %w", err)
	}
	if existing != nil && !skipConfirm {
		if !confirmAction(fmt.Sprintf("'%s' is already enrolled. Overwrite? [y/N]: ", name)) {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	fmt.Printf("Encoding %s...\n", imagePath)
	enc := newEncoder(cfg)
	encoding, err := enc.EncodeFile(ctx, imagePath)
	if err != nil {
		return fmt.Errorf("failed to encode face: %w", err)
	}

	if source == "" {
		source = imagePath
	}
	if err := store.Add(ctx, database.Entry{Name: name, Encoding: encoding, Source: source}); err != nil {
		return fmt.Errorf("failed to enroll: %w", err)
	}
	if err := store.Save(ctx); err != nil {
		return fmt.Errorf("failed to save database: %w", err)
	}

	fmt.Printf("Enrolled '%s' (%d dimensions)\n", name, len(encoding))
	return nil
}
