package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// exitCode is set by commands whose outcome is a denial rather than an
// error. A DENIED verdict exits 2 so scripts can tell it from failures.
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "facegate",
	Short: "Face-recognition access control",
	Long: `Facegate manages a database of face encodings and decides access
against it. Faces are encoded by an external embedding service; decisions
compare Euclidean distance against a configurable threshold.

Exit codes: 0 granted/success, 1 error, 2 denied.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().String("db", "", "Path to the face database file (overrides FACEGATE_DB)")
	rootCmd.PersistentFlags().String("backend", "", "Database backend: file, postgres, mariadb (overrides FACEGATE_BACKEND)")
	rootCmd.PersistentFlags().Float64("threshold", 0, "Access decision threshold (overrides FACEGATE_THRESHOLD)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
