// Package config loads the signal engine configuration from YAML with
// environment variable overrides.
package config

import "time"

// Default configuration values.
const (
	defaultServiceName     = "signal-engine"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8075
	defaultPipeline        = "pe_signals"
	defaultConcurrency     = 10
	defaultBatchSize       = 100
	defaultWriteRPS        = 50
	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "signal_engine"
	defaultDBSSLMode       = "disable"
	defaultDBMaxConns      = 25
	defaultDBMaxIdleConns  = 5
	defaultESURL           = "http://localhost:9200"
	defaultESMaxRetries    = 3
	defaultESTimeoutSec    = 30
	defaultLookbackDays    = 21
	defaultRecencyDays     = 14
	defaultLogLevel        = "info"
	defaultLogOutput       = "stdout"
	hoursPerDay            = 24
)

// Config holds all configuration for the signal engine service.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Database      DatabaseConfig      `yaml:"database"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Ranking       RankingConfig       `yaml:"ranking"`
	Logging       LoggingConfig       `yaml:"logging"`
	Auth          AuthConfig          `yaml:"auth"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Port        int    `env:"SIGNAL_ENGINE_PORT"        yaml:"port"`
	Debug       bool   `env:"APP_DEBUG"                 yaml:"debug"`
	Pipeline    string `env:"SIGNAL_ENGINE_PIPELINE"    yaml:"pipeline"`
	Concurrency int    `env:"SIGNAL_ENGINE_CONCURRENCY" yaml:"concurrency"`
	BatchSize   int    `yaml:"batch_size"`
	WriteRPS    int    `yaml:"write_rps"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// ElasticsearchConfig holds Elasticsearch configuration.
type ElasticsearchConfig struct {
	URL        string        `env:"ELASTICSEARCH_URL" yaml:"url"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	MaxRetries int           `yaml:"max_retries"`
	Timeout    time.Duration `yaml:"timeout"`
}

// RankingConfig holds source priority ranking settings.
type RankingConfig struct {
	// LookbackDays bounds the metric history consulted per run.
	LookbackDays int `yaml:"lookback_days"`
	// RecencyWindow is how far back dedupe keys are checked before insert.
	RecencyWindow time.Duration `yaml:"recency_window"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Output string `env:"LOG_OUTPUT" yaml:"output"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setElasticsearchDefaults(&cfg.Elasticsearch)
	setRankingDefaults(&cfg.Ranking)
	setLoggingDefaults(&cfg.Logging)
	// Auth defaults are handled by env tags - no explicit defaults needed
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.Pipeline == "" {
		s.Pipeline = defaultPipeline
	}
	if s.Concurrency == 0 {
		s.Concurrency = defaultConcurrency
	}
	if s.BatchSize == 0 {
		s.BatchSize = defaultBatchSize
	}
	if s.WriteRPS == 0 {
		s.WriteRPS = defaultWriteRPS
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = time.Hour
	}
}

func setElasticsearchDefaults(e *ElasticsearchConfig) {
	if e.URL == "" {
		e.URL = defaultESURL
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = defaultESMaxRetries
	}
	if e.Timeout == 0 {
		e.Timeout = defaultESTimeoutSec * time.Second
	}
}

func setRankingDefaults(r *RankingConfig) {
	if r.LookbackDays == 0 {
		r.LookbackDays = defaultLookbackDays
	}
	if r.RecencyWindow == 0 {
		r.RecencyWindow = defaultRecencyDays * hoursPerDay * time.Hour
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Output == "" {
		l.Output = defaultLogOutput
	}
}
