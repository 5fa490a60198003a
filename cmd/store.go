package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/audit"
	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/database/mariadb"
	"github.com/facegate/facegate/internal/database/postgres"
	"github.com/facegate/facegate/internal/encoder"
)

// loadConfig builds the configuration from the environment and applies the
// persistent flag overrides.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	if db := mustGetString(cmd, "db"); db != "" {
		cfg.Database.Path = db
	}
	if backend := mustGetString(cmd, "backend"); backend != "" {
		cfg.Database.Backend = backend
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Match.Threshold = mustGetFloat64(cmd, "threshold")
	}
	return cfg
}

// openStore opens the configured database backend. Every command goes
// through here so backend selection is uniform.
func openStore(cfg *config.Config) (database.Store, error) {
	switch cfg.Database.Backend {
	case "", "file":
		return database.Open(cfg.Database.Path)
	case "postgres":
		return postgres.Open(&cfg.Database)
	case "mariadb":
		return mariadb.Open(&cfg.Database)
	default:
		return nil, fmt.Errorf("unknown database backend %q (supported: file, postgres, mariadb)", cfg.Database.Backend)
	}
}

// newEncoder creates the embedding service client from the configuration.
func newEncoder(cfg *config.Config) *encoder.Client {
	return encoder.NewClient(cfg.Encoder.URL, cfg.Encoder.Model, time.Duration(cfg.Encoder.Timeout)*time.Second)
}

// openAudit opens the audit trail when configured. Auditing is best-effort:
// an unopenable trail is a warning, never a reason to refuse a decision.
func openAudit(cfg *config.Config) *audit.Logger {
	logger, err := audit.Open(cfg.Audit.Path)
	if err != nil {
		fmt.Printf("Warning: audit log unavailable: %v\n", err)
		return nil
	}
	return logger
}
