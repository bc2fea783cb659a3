package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/filedepot/filedepot/pkg/types"
)

// Load reads and parses the configuration file
// It also supports environment variable overrides with FD_ prefix
func Load(configPath string) (*types.Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg types.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func Validate(cfg *types.Config) error {
	// Validate server config
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	// Validate database config
	if cfg.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	// Validate storage backend
	switch cfg.Storage.Backend {
	case types.BackendLocal:
		if cfg.Storage.Local.BasePath == "" {
			return fmt.Errorf("local storage base_path is required")
		}
	case types.BackendS3:
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
	case types.BackendAzure:
		if cfg.Storage.Azure.AccountName == "" || cfg.Storage.Azure.AccountKey == "" {
			return fmt.Errorf("azure account_name and account_key are required")
		}
		if cfg.Storage.Azure.Container == "" {
			return fmt.Errorf("azure container is required")
		}
	case types.BackendBunny:
		if err := validateBunny(cfg.Storage.Bunny); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be 'local', 's3', 'azure' or 'bunny')", cfg.Storage.Backend)
	}

	return nil
}

// validateBunny checks the Bunny Storage options. All four fields are
// required and the endpoints must be configured without a trailing slash,
// since object names are appended verbatim.
func validateBunny(opts types.BunnyStorageOpts) error {
	if opts.Bucket == "" {
		return fmt.Errorf("bunny bucket is required")
	}
	if opts.APIEndpoint == "" {
		return fmt.Errorf("bunny api_endpoint is required")
	}
	if opts.CDNEndpoint == "" {
		return fmt.Errorf("bunny cdn_endpoint is required")
	}
	if opts.AccessKey == "" {
		return fmt.Errorf("bunny access_key is required")
	}
	if strings.HasSuffix(opts.APIEndpoint, "/") {
		return fmt.Errorf("bunny api_endpoint must not end with a slash: %s", opts.APIEndpoint)
	}
	if strings.HasSuffix(opts.CDNEndpoint, "/") {
		return fmt.Errorf("bunny cdn_endpoint must not end with a slash: %s", opts.CDNEndpoint)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides
// Environment variables should be prefixed with FD_ (FileDepot)
func applyEnvOverrides(cfg *types.Config) {
	// Server overrides
	if val := os.Getenv("FD_SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("FD_SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &cfg.Server.Port)
	}

	// Database overrides
	if val := os.Getenv("FD_DATABASE_PATH"); val != "" {
		cfg.Database.Path = val
	}

	// Storage overrides
	if val := os.Getenv("FD_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = val
	}
	if val := os.Getenv("FD_STORAGE_LOCAL_BASE_PATH"); val != "" {
		cfg.Storage.Local.BasePath = val
	}
	if val := os.Getenv("FD_STORAGE_S3_BUCKET"); val != "" {
		cfg.Storage.S3.Bucket = val
	}
	if val := os.Getenv("FD_STORAGE_S3_REGION"); val != "" {
		cfg.Storage.S3.Region = val
	}
	if val := os.Getenv("FD_STORAGE_S3_ENDPOINT"); val != "" {
		cfg.Storage.S3.Endpoint = val
	}
	if val := os.Getenv("FD_STORAGE_S3_ACCESS_KEY_ID"); val != "" {
		cfg.Storage.S3.AccessKeyID = val
	}
	if val := os.Getenv("FD_STORAGE_S3_SECRET_ACCESS_KEY"); val != "" {
		cfg.Storage.S3.SecretAccessKey = val
	}
	if val := os.Getenv("FD_STORAGE_AZURE_ACCOUNT_NAME"); val != "" {
		cfg.Storage.Azure.AccountName = val
	}
	if val := os.Getenv("FD_STORAGE_AZURE_ACCOUNT_KEY"); val != "" {
		cfg.Storage.Azure.AccountKey = val
	}
	if val := os.Getenv("FD_STORAGE_AZURE_CONTAINER"); val != "" {
		cfg.Storage.Azure.Container = val
	}
	if val := os.Getenv("FD_STORAGE_AZURE_CDN_BASE_URL"); val != "" {
		cfg.Storage.Azure.CDNBaseURL = val
	}
	if val := os.Getenv("FD_STORAGE_BUNNY_BUCKET"); val != "" {
		cfg.Storage.Bunny.Bucket = val
	}
	if val := os.Getenv("FD_STORAGE_BUNNY_API_ENDPOINT"); val != "" {
		cfg.Storage.Bunny.APIEndpoint = val
	}
	if val := os.Getenv("FD_STORAGE_BUNNY_CDN_ENDPOINT"); val != "" {
		cfg.Storage.Bunny.CDNEndpoint = val
	}
	if val := os.Getenv("FD_STORAGE_BUNNY_ACCESS_KEY"); val != "" {
		cfg.Storage.Bunny.AccessKey = val
	}
}

// GetDefault returns a default configuration
func GetDefault() *types.Config {
	return &types.Config{
		Server: types.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 15,
		},
		Storage: types.StorageConfig{
			Backend: types.BackendLocal,
			Local: types.LocalStorageOpts{
				BasePath: "/var/lib/filedepot/storage",
			},
		},
		Database: types.DatabaseConfig{
			Path: "/var/lib/filedepot/files.db",
		},
	}
}
