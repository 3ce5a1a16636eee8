package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Matching MatchingConfig `mapstructure:"matching"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // seconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Engine Configuration ---

// MatchingConfig holds the scoring and generation settings.
type MatchingConfig struct {
	DefaultLimit       int `mapstructure:"default_limit"`       // interactive generate cap
	MinScore           int `mapstructure:"min_score"`           // interactive minimum score
	ScoringConcurrency int `mapstructure:"scoring_concurrency"` // candidate fan-out bound
	ScenarioTimeout    int `mapstructure:"scenario_timeout"`    // milliseconds
	ProfileCacheTTL    int `mapstructure:"profile_cache_ttl"`   // seconds
}

// ScenarioTimeoutDuration returns the scenario lookup bound as a Duration.
func (m MatchingConfig) ScenarioTimeoutDuration() time.Duration {
	return time.Duration(m.ScenarioTimeout) * time.Millisecond
}

// ProfileCacheTTLDuration returns the snapshot cache TTL as a Duration.
func (m MatchingConfig) ProfileCacheTTLDuration() time.Duration {
	return time.Duration(m.ProfileCacheTTL) * time.Second
}

// SweepConfig holds the nightly sweep settings. The sweep seeds with a lower
// minimum score than the interactive endpoints to create more breadth.
type SweepConfig struct {
	Schedule           string `mapstructure:"schedule"` // cron expression, with seconds
	MinScore           int    `mapstructure:"min_score"`
	Limit              int    `mapstructure:"limit"` // per-opening candidate cap
	OpeningConcurrency int    `mapstructure:"opening_concurrency"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
