package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled people",
	Long: `List all enrolled people in enrollment order.

Use --json to get machine-readable output including provenance and
enrollment timestamps.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("json", false, "Output as JSON")
}

type listedPerson struct {
	Name    string    `json:"name"`
	Source  string    `json:"source,omitempty"`
	AddedAt time.Time `json:"added_at"`
	Dim     int       `json:"dim"`
}

func runList(cmd *cobra.Command, args []string) error {
	jsonOut := mustGetBool(cmd, "json")

	cfg := loadConfig(cmd)
	ctx := context.Background()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	entries, err := store.Entries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if jsonOut {
		people := make([]listedPerson, len(entries))
		for i, e := range entries {
			people[i] = listedPerson{
				Name:    e.Name,
				Source:  e.Source,
				AddedAt: e.AddedAt,
				Dim:     len(e.Encoding),
			}
		}
		out, err := json.MarshalIndent(map[string]any{"people": people, "count": len(people)}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal listing: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No people enrolled.")
		return nil
	}

	fmt.Printf("Enrolled people (%d):\n", len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("  %s (%d dims", e.Name, len(e.Encoding))
		if e.Source != "" {
			line += fmt.Sprintf(", from %s", e.Source)
		}
		fmt.Println(line + ")")
	}
	return nil
}
