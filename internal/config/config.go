package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
	Backup    BackupConfig    `yaml:"backup"`
	Retention RetentionConfig `yaml:"retention"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// StorageConfig selects the key-value backend. Path is the data directory for
// the file backend and the database file for sqlite.
type StorageConfig struct {
	Backend        string         `yaml:"backend"`
	Path           string         `yaml:"path"`
	Redis          RedisConfig    `yaml:"redis"`
	Database       DatabaseConfig `yaml:"database"`
	MigrationsPath string         `yaml:"migrations_path"`
}

type RedisConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Stdout     *bool  `yaml:"stdout"`
}

type BackupConfig struct {
	Dir      string `yaml:"dir"`
	Schedule string `yaml:"schedule"`
}

type RetentionConfig struct {
	Months   int    `yaml:"months"`
	Schedule string `yaml:"schedule"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
	AuthKey  string `yaml:"auth_key"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// LogToStdout reports whether logs go to stdout. Defaults to true.
func (l LoggingConfig) LogToStdout() bool {
	return l.Stdout == nil || *l.Stdout
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads config from a YAML file, applies defaults, then environment
// variable overrides. Env vars use the prefix LOADPROGRESS_:
//
//	LOADPROGRESS_SERVER_HOST, LOADPROGRESS_SERVER_PORT, LOADPROGRESS_AUTH_API_KEY,
//	LOADPROGRESS_STORAGE_BACKEND, LOADPROGRESS_STORAGE_PATH,
//	LOADPROGRESS_REDIS_URL, LOADPROGRESS_REDIS_PREFIX,
//	LOADPROGRESS_DB_HOST, LOADPROGRESS_DB_PORT, LOADPROGRESS_DB_NAME,
//	LOADPROGRESS_DB_USER, LOADPROGRESS_DB_PASSWORD, LOADPROGRESS_DB_SSLMODE,
//	LOADPROGRESS_LOG_LEVEL, LOADPROGRESS_LOG_FORMAT, LOADPROGRESS_LOG_FILE,
//	LOADPROGRESS_BACKUP_DIR, LOADPROGRESS_RETENTION_MONTHS,
//	LOADPROGRESS_TS_AUTHKEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data"
	}
	if c.Storage.Redis.Prefix == "" {
		c.Storage.Redis.Prefix = "loadprogress:"
	}
	if c.Storage.MigrationsPath == "" {
		c.Storage.MigrationsPath = "migrations"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 50
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = "backups"
	}
	if c.Backup.Schedule == "" {
		c.Backup.Schedule = "@daily"
	}
	if c.Retention.Months == 0 {
		c.Retention.Months = 3
	}
	if c.Retention.Schedule == "" {
		c.Retention.Schedule = "@daily"
	}
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "loadprogress"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "loadprogress"
	}
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("LOADPROGRESS_SERVER_HOST", &cfg.Server.Host)
	setInt("LOADPROGRESS_SERVER_PORT", &cfg.Server.Port)
	setString("LOADPROGRESS_AUTH_API_KEY", &cfg.Auth.APIKey)
	setString("LOADPROGRESS_STORAGE_BACKEND", &cfg.Storage.Backend)
	setString("LOADPROGRESS_STORAGE_PATH", &cfg.Storage.Path)
	setString("LOADPROGRESS_REDIS_URL", &cfg.Storage.Redis.URL)
	setString("LOADPROGRESS_REDIS_PREFIX", &cfg.Storage.Redis.Prefix)
	setString("LOADPROGRESS_DB_HOST", &cfg.Storage.Database.Host)
	setInt("LOADPROGRESS_DB_PORT", &cfg.Storage.Database.Port)
	setString("LOADPROGRESS_DB_NAME", &cfg.Storage.Database.Name)
	setString("LOADPROGRESS_DB_USER", &cfg.Storage.Database.User)
	setString("LOADPROGRESS_DB_PASSWORD", &cfg.Storage.Database.Password)
	setString("LOADPROGRESS_DB_SSLMODE", &cfg.Storage.Database.SSLMode)
	setString("LOADPROGRESS_LOG_LEVEL", &cfg.Logging.Level)
	setString("LOADPROGRESS_LOG_FORMAT", &cfg.Logging.Format)
	setString("LOADPROGRESS_LOG_FILE", &cfg.Logging.File)
	setString("LOADPROGRESS_BACKUP_DIR", &cfg.Backup.Dir)
	setString("LOADPROGRESS_BACKUP_SCHEDULE", &cfg.Backup.Schedule)
	setInt("LOADPROGRESS_RETENTION_MONTHS", &cfg.Retention.Months)
	setString("LOADPROGRESS_RETENTION_SCHEDULE", &cfg.Retention.Schedule)
	setString("LOADPROGRESS_TS_AUTHKEY", &cfg.Tailscale.AuthKey)
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendRedis:
		if c.Storage.Redis.URL == "" {
			return fmt.Errorf("storage.redis.url is required for the redis backend")
		}
	case BackendPostgres:
		d := c.Storage.Database
		if d.Host == "" {
			return fmt.Errorf("storage.database.host is required")
		}
		if d.Port == 0 {
			return fmt.Errorf("storage.database.port is required")
		}
		if d.Name == "" {
			return fmt.Errorf("storage.database.name is required")
		}
		if d.User == "" {
			return fmt.Errorf("storage.database.user is required")
		}
	default:
		return fmt.Errorf("storage.backend %q is not supported", c.Storage.Backend)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported", c.Logging.Format)
	}
	if c.Retention.Months < 0 {
		return fmt.Errorf("retention.months must be positive")
	}
	if _, err := cron.Parse(c.Backup.Schedule); err != nil {
		return fmt.Errorf("backup.schedule: %w", err)
	}
	if _, err := cron.Parse(c.Retention.Schedule); err != nil {
		return fmt.Errorf("retention.schedule: %w", err)
	}
	return nil
}
