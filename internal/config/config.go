// Package config provides configuration loading and validation for the résumé reader.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreS3       = "s3"
	StoreMemory   = "memory"
)

// Defaults.
const (
	DefaultPort            = 8080
	DefaultMaxUploadBytes  = 10 << 20
	DefaultDownloadLimit   = 2
	DefaultUploadPerMinute = 30
	DefaultUploadBurst     = 5
	DefaultSQLiteDir       = "./data"
)

// S3Config describes the S3 compatible bucket that holds uploaded documents.
// When Endpoint is empty and AccountID is set, the Cloudflare R2 endpoint for that account is used.
type S3Config struct {
	Bucket    string `json:"bucket,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	Region    string `json:"region,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}

// ResolvedEndpoint returns the explicit endpoint, the R2 endpoint for AccountID, or "".
func (s S3Config) ResolvedEndpoint() string {
	if s.Endpoint != "" {
		return s.Endpoint
	}
	if s.AccountID != "" {
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.AccountID)
	}
	return ""
}

// Config represents the service configuration. It can be loaded from a JSON file, from the
// environment, or both; see Load for precedence.
type Config struct {
	Port int `json:"port,omitempty"`

	// Storage
	RecordStore string   `json:"record_store,omitempty"` // postgres, sqlite or memory
	BlobStore   string   `json:"blob_store,omitempty"`   // s3, sqlite or memory
	DatabaseURL string   `json:"database_url,omitempty"` // PostgreSQL connection URL
	SQLiteDir   string   `json:"sqlite_dir,omitempty"`   // Directory for the local sqlite database
	S3          S3Config `json:"s3,omitempty"`

	// Events
	RabbitMQURL string `json:"rabbitmq_url,omitempty"` // Parse events are not published when empty

	// Limits
	MaxUploadBytes  int64 `json:"max_upload_bytes,omitempty"`
	DownloadLimit   int   `json:"download_limit,omitempty"`    // Downloads allowed per session
	UploadPerMinute int   `json:"upload_per_minute,omitempty"` // Uploads and logins per client per minute
	UploadBurst     int   `json:"upload_burst,omitempty"`

	Verbose bool `json:"verbose,omitempty"`
}

// Defaults returns the configuration used for every value left unset.
func Defaults() Config {
	return Config{
		Port:            DefaultPort,
		RecordStore:     StoreSQLite,
		BlobStore:       StoreSQLite,
		SQLiteDir:       DefaultSQLiteDir,
		S3:              S3Config{Region: "auto"},
		MaxUploadBytes:  DefaultMaxUploadBytes,
		DownloadLimit:   DefaultDownloadLimit,
		UploadPerMinute: DefaultUploadPerMinute,
		UploadBurst:     DefaultUploadBurst,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables. Unset variables leave the zero value.
func FromEnv() Config {
	return Config{
		Port:        getEnvAsInt("PORT", 0),
		RecordStore: getEnv("RECORD_STORE", ""),
		BlobStore:   getEnv("BLOB_STORE", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLiteDir:   getEnv("SQLITE_DIR", ""),
		S3: S3Config{
			Bucket:    getEnv("S3_BUCKET", ""),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			AccountID: getEnv("R2_ACCOUNT_ID", ""),
		},
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		MaxUploadBytes:  getEnvAsInt64("MAX_UPLOAD_BYTES", 0),
		DownloadLimit:   getEnvAsInt("DOWNLOAD_LIMIT", 0),
		UploadPerMinute: getEnvAsInt("UPLOAD_PER_MINUTE", 0),
		UploadBurst:     getEnvAsInt("UPLOAD_BURST", 0),
	}
}

// Load builds the effective configuration. Environment variables win over the config file
// (when path is not empty), which wins over Defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := FromEnv()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
		cfg.Verbose = cfg.Verbose || fileCfg.Verbose
	}
	cfg = cfg.MergeWithDefaults(Defaults())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}

	switch c.RecordStore {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres record store")
		}
	case StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("config error: unknown record store %q", c.RecordStore)
	}

	switch c.BlobStore {
	case StoreS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("config error: 's3.bucket' is required for the s3 blob store")
		}
	case StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("config error: unknown blob store %q", c.BlobStore)
	}

	if (c.RecordStore == StoreSQLite || c.BlobStore == StoreSQLite) && c.SQLiteDir == "" {
		return fmt.Errorf("config error: 'sqlite_dir' is required for sqlite stores")
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be positive")
	}
	if c.DownloadLimit < 1 {
		return fmt.Errorf("config error: 'download_limit' must be at least 1")
	}
	if c.UploadPerMinute < 0 || c.UploadBurst < 0 {
		return fmt.Errorf("config error: upload rate limits must be non-negative")
	}

	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RecordStore == "" {
		result.RecordStore = defaults.RecordStore
	}
	if result.BlobStore == "" {
		result.BlobStore = defaults.BlobStore
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SQLiteDir == "" {
		result.SQLiteDir = defaults.SQLiteDir
	}
	if result.S3.Bucket == "" {
		result.S3.Bucket = defaults.S3.Bucket
	}
	if result.S3.Endpoint == "" {
		result.S3.Endpoint = defaults.S3.Endpoint
	}
	if result.S3.Region == "" {
		result.S3.Region = defaults.S3.Region
	}
	if result.S3.AccessKey == "" {
		result.S3.AccessKey = defaults.S3.AccessKey
	}
	if result.S3.SecretKey == "" {
		result.S3.SecretKey = defaults.S3.SecretKey
	}
	if result.S3.AccountID == "" {
		result.S3.AccountID = defaults.S3.AccountID
	}
	if result.RabbitMQURL == "" {
		result.RabbitMQURL = defaults.RabbitMQURL
	}

	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.DownloadLimit == 0 {
		result.DownloadLimit = defaults.DownloadLimit
	}
	if result.UploadPerMinute == 0 {
		result.UploadPerMinute = defaults.UploadPerMinute
	}
	if result.UploadBurst == 0 {
		result.UploadBurst = defaults.UploadBurst
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}
