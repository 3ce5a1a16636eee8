package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like MATCHING_MIN_SCORE
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored if not present.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from several locations so tools and tests run from
// nested directories still pick it up.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "match-engine"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8084
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15
	}
	if cfg.Database.Postgres.Host == "" {
		cfg.Database.Postgres.Host = "localhost"
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 20
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}
	if cfg.Matching.DefaultLimit == 0 {
		cfg.Matching.DefaultLimit = 50
	}
	if cfg.Matching.MinScore == 0 {
		cfg.Matching.MinScore = 60
	}
	if cfg.Matching.ScoringConcurrency == 0 {
		cfg.Matching.ScoringConcurrency = 8
	}
	if cfg.Matching.ScenarioTimeout == 0 {
		cfg.Matching.ScenarioTimeout = 2000
	}
	if cfg.Matching.ProfileCacheTTL == 0 {
		cfg.Matching.ProfileCacheTTL = 600
	}
	if cfg.Sweep.Schedule == "" {
		cfg.Sweep.Schedule = "0 0 3 * * *"
	}
	if cfg.Sweep.MinScore == 0 {
		cfg.Sweep.MinScore = 50
	}
	if cfg.Sweep.Limit == 0 {
		cfg.Sweep.Limit = 50
	}
	if cfg.Sweep.OpeningConcurrency == 0 {
		cfg.Sweep.OpeningConcurrency = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if cfg.Matching.MinScore < 0 || cfg.Matching.MinScore > 100 {
		return fmt.Errorf("matching.min_score must be within 0..100")
	}
	if cfg.Sweep.MinScore < 0 || cfg.Sweep.MinScore > 100 {
		return fmt.Errorf("sweep.min_score must be within 0..100")
	}
	return nil
}
