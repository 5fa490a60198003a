// Package mariadb implements the database.Store contract on MariaDB.
// Encodings are stored as JSON float arrays in a LONGTEXT column since
// MariaDB has no vector type; nearest-neighbor queries are answered by
// the exact in-memory matcher, not the database.
package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/facegate/facegate/internal/config"
)

// Pool manages a MariaDB connection pool. The DSN must include
// parseTime=true so DATETIME columns scan into time.Time.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new MariaDB connection pool.
func NewPool(cfg *config.DatabaseConfig) (*Pool, error) {
	if cfg.MariaDBDSN == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	db, err := sql.Open("mysql", cfg.MariaDBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	return &Pool{db: db}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// ensureSchema creates the people table on first use.
func (p *Pool) ensureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS people (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			encoding LONGTEXT NOT NULL,
			dim INT NOT NULL,
			source VARCHAR(1024) NOT NULL DEFAULT '',
			added_at DATETIME(6) NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create people table: %w", err)
	}
	return nil
}

// Open connects to MariaDB, creates the schema if needed and returns the
// people store. Closing the store closes the pool.
func Open(cfg *config.DatabaseConfig) (*PeopleStore, error) {
	pool, err := NewPool(cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.ensureSchema(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}

	return NewPeopleStore(pool), nil
}
