package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/homestock/internal/backup"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable read by both binaries.
const EnvPrefix = "HOMESTOCK"

// Server configures homestockd.
type Server struct {
	Addr      string
	DBPath    string
	JWTSecret string
	LogLevel  string
	LogFormat string
	// RateLimit is the number of mutating requests allowed per client IP per minute.
	RateLimit int

	BackupInterval      time.Duration
	BackupRetentionDays int
	BackupPassphrase    string
	S3                  backup.S3Config
}

// Backup returns the backup manager configuration.
func (c Server) Backup() backup.Config {
	return backup.Config{
		S3:            c.S3,
		Passphrase:    c.BackupPassphrase,
		Interval:      c.BackupInterval,
		RetentionDays: c.BackupRetentionDays,
	}
}

// Validate reports settings that make serving impossible.
func (c Server) Validate() error {
	if c.JWTSecret == "" {
		return errors.New(EnvPrefix + "_JWT_SECRET is required")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimit)
	}
	return nil
}

// Client configures the homestock terminal client.
type Client struct {
	URL      string
	APIKey   string
	LogLevel string
	LogFile  string
}

// newViper reads HOMESTOCK_* environment variables and, when present, a
// config file. path names the file explicitly; when empty homestock.env or
// homestock.yaml is looked up in the working directory. Environment
// variables win over the file.
func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("homestock")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// LoadServer loads the service configuration.
func LoadServer(path string) (*Server, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}

	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "homestock.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("rate_limit", 120)
	v.SetDefault("backup_interval", "0s")
	v.SetDefault("backup_retention_days", 30)
	v.SetDefault("s3_region", "auto")

	return &Server{
		Addr:                v.GetString("addr"),
		DBPath:              v.GetString("db_path"),
		JWTSecret:           v.GetString("jwt_secret"),
		LogLevel:            v.GetString("log_level"),
		LogFormat:           v.GetString("log_format"),
		RateLimit:           v.GetInt("rate_limit"),
		BackupInterval:      v.GetDuration("backup_interval"),
		BackupRetentionDays: v.GetInt("backup_retention_days"),
		BackupPassphrase:    v.GetString("backup_passphrase"),
		S3: backup.S3Config{
			Endpoint:  v.GetString("s3_endpoint"),
			Bucket:    v.GetString("s3_bucket"),
			Region:    v.GetString("s3_region"),
			AccessKey: v.GetString("s3_access_key"),
			SecretKey: v.GetString("s3_secret_key"),
		},
	}, nil
}

// LoadClient loads the terminal client configuration.
func LoadClient(path string) (*Client, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}

	v.SetDefault("url", "http://localhost:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "homestock.log")

	return &Client{
		URL:      v.GetString("url"),
		APIKey:   v.GetString("api_key"),
		LogLevel: v.GetString("log_level"),
		LogFile:  v.GetString("log_file"),
	}, nil
}
