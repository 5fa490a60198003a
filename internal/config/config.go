package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

const (
	defaultDBPath    = "database/face_database.json"
	defaultBackend   = "file"
	defaultModel     = "facenet"
	defaultThreshold = 10.0
	defaultTopK      = 3
)

type Config struct {
	Database DatabaseConfig
	Encoder  EncoderConfig
	Match    MatchConfig
	Web      WebConfig
	Audit    AuditConfig
	Models   ModelsConfig
}

type DatabaseConfig struct {
	Backend      string // file | postgres | mariadb
	Path         string // JSON database file (file backend)
	PostgresURL  string // PostgreSQL connection URL (postgres backend)
	MariaDBDSN   string // MariaDB DSN (mariadb backend)
	MaxOpenConns int    // Maximum open SQL connections (default 25)
	MaxIdleConns int    // Maximum idle SQL connections (default 5)
}

type EncoderConfig struct {
	URL     string // embedding service base URL, defaults to http://localhost:8000
	Model   string // encoder model, keys into the embedded presets
	Timeout int    // HTTP timeout in seconds
}

type MatchConfig struct {
	Threshold float64 // access decision threshold (L2 distance)
	TopK      int     // candidate list size for top-K search
}

type WebConfig struct {
	APIToken string // bearer token for the HTTP API; empty disables auth
}

type AuditConfig struct {
	Path string // JSONL audit trail; empty disables auditing
}

// ModelsConfig holds the embedded per-model threshold presets.
type ModelsConfig struct {
	Models map[string]ModelPreset `yaml:"models"`
}

type ModelPreset struct {
	Dim       int     `yaml:"dim"`
	Threshold float64 `yaml:"threshold"`
	Scale     string  `yaml:"scale"` // raw | normalized
}

// envStr reads an environment variable with a fallback default.
func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// Load builds the configuration from the environment. Only recognized
// variables are read; anything else in the environment is ignored.
func Load() *Config {
	var models ModelsConfig
	if err := yaml.Unmarshal(modelsYAML, &models); err != nil {
		// Embedded file, so this can only happen on a broken build.
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}

	model := envStr("FACEGATE_MODEL", defaultModel)

	// Threshold resolution: explicit env override first, then the model
	// preset, then the built-in default.
	threshold := defaultThreshold
	if preset, ok := models.Models[model]; ok {
		threshold = preset.Threshold
	}
	threshold = envFloat("FACEGATE_THRESHOLD", threshold)

	return &Config{
		Database: DatabaseConfig{
			Backend:      envStr("FACEGATE_BACKEND", defaultBackend),
			Path:         envStr("FACEGATE_DB", defaultDBPath),
			PostgresURL:  os.Getenv("DATABASE_URL"),
			MariaDBDSN:   os.Getenv("MARIADB_DSN"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Encoder: EncoderConfig{
			URL:     os.Getenv("ENCODER_URL"),
			Model:   model,
			Timeout: envInt("ENCODER_TIMEOUT", 30),
		},
		Match: MatchConfig{
			Threshold: threshold,
			TopK:      envInt("FACEGATE_TOP_K", defaultTopK),
		},
		Web: WebConfig{
			APIToken: os.Getenv("WEB_API_TOKEN"),
		},
		Audit: AuditConfig{
			Path: os.Getenv("AUDIT_LOG"),
		},
		Models: models,
	}
}

// GetModelPreset returns the preset for a model and whether it exists.
func (c *Config) GetModelPreset(model string) (ModelPreset, bool) {
	preset, ok := c.Models.Models[model]
	return preset, ok
}
