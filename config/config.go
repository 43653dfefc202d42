package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Progression   ProgressionConfig   `yaml:"progression"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the HTTP listener configuration.
type HTTPConfig struct {
	Addr           string  `yaml:"addr"`
	AwardRateLimit float64 `yaml:"award_rate_limit"` // requests/sec on the award endpoint
	AwardRateBurst int     `yaml:"award_rate_burst"`
}

// JWTConfig holds JWT configuration for admin endpoints.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// SchedulerConfig holds season rollover scheduling configuration.
type SchedulerConfig struct {
	SharedSecret     string `yaml:"shared_secret"` // authenticates the external rollover trigger
	WinnersPerSeason int    `yaml:"winners_per_season"`
	DailyRollover    bool   `yaml:"daily_rollover"` // run the in-process daily job
}

// ProgressionConfig holds the progression business configuration.
// Multipliers is the single authoritative tier -> multiplier table; every
// award path resolves through it.
type ProgressionConfig struct {
	Multipliers          map[string]float64 `yaml:"multipliers"`
	ReservedSystemEmails []string           `yaml:"reserved_system_emails"`
	Timezone             string             `yaml:"timezone"`
}

// ObservabilityConfig holds configuration for observability components.
type ObservabilityConfig struct {
	MetricsAddress  string  `yaml:"metrics_address"`
	TempoEndpoint   string  `yaml:"tempo_endpoint"`
	TempoInsecure   bool    `yaml:"tempo_insecure"`
	TempoSampleRate float64 `yaml:"tempo_sample_rate"`
	Environment     string  `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file, falling back to
// environment variables when the file is absent. Environment variables
// override file values either way.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JWT.DefaultTTL = d
		}
	}
	if v := os.Getenv("SCHEDULER_SHARED_SECRET"); v != "" {
		cfg.Scheduler.SharedSecret = v
	}
	if v := os.Getenv("WINNERS_PER_SEASON"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scheduler.WinnersPerSeason = n
		}
	}
	if v := os.Getenv("DAILY_ROLLOVER"); v != "" {
		cfg.Scheduler.DailyRollover = v == "true"
	}
	if v := os.Getenv("RESERVED_SYSTEM_EMAILS"); v != "" {
		cfg.Progression.ReservedSystemEmails = strings.Split(v, ",")
	}
	if v := os.Getenv("PROGRESSION_TIMEZONE"); v != "" {
		cfg.Progression.Timezone = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("TEMPO_ENDPOINT"); v != "" {
		cfg.Observability.TempoEndpoint = v
	}
	if v := os.Getenv("TEMPO_INSECURE"); v != "" {
		cfg.Observability.TempoInsecure = v == "true"
	}
	if v := os.Getenv("TEMPO_SAMPLE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Observability.TempoSampleRate = f
		}
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}

	applyDefaults(&cfg)

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.AwardRateLimit == 0 {
		cfg.HTTP.AwardRateLimit = 25
	}
	if cfg.HTTP.AwardRateBurst == 0 {
		cfg.HTTP.AwardRateBurst = 50
	}
	if cfg.JWT.DefaultTTL == 0 {
		cfg.JWT.DefaultTTL = 24 * time.Hour
	}
	if cfg.Scheduler.WinnersPerSeason == 0 {
		cfg.Scheduler.WinnersPerSeason = 3
	}
	if len(cfg.Progression.Multipliers) == 0 {
		cfg.Progression.Multipliers = DefaultMultipliers()
	}
	if cfg.Progression.Timezone == "" {
		cfg.Progression.Timezone = "UTC"
	}
	if cfg.Observability.TempoSampleRate == 0 {
		cfg.Observability.TempoSampleRate = 0.1
	}
}

// DefaultMultipliers returns the shipped subscription tier multiplier table.
func DefaultMultipliers() map[string]float64 {
	return map[string]float64{
		"base":    1,
		"mid":     1.5,
		"premium": 3,
	}
}
