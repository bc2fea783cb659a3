package types

// Config represents the overall application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Database DatabaseConfig `yaml:"database" json:"database"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	ReadTimeout  int    `yaml:"read_timeout" json:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" json:"write_timeout"` // seconds
}

// StorageConfig defines storage backend settings
type StorageConfig struct {
	Backend string           `yaml:"backend" json:"backend"` // "local", "s3", "azure" or "bunny"
	Local   LocalStorageOpts `yaml:"local" json:"local"`
	S3      S3StorageOpts    `yaml:"s3" json:"s3"`
	Azure   AzureStorageOpts `yaml:"azure" json:"azure"`
	Bunny   BunnyStorageOpts `yaml:"bunny" json:"bunny"`
}

// LocalStorageOpts configures the local filesystem backend
type LocalStorageOpts struct {
	BasePath string `yaml:"base_path" json:"base_path"`
}

// S3StorageOpts configures the S3-compatible backend
type S3StorageOpts struct {
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	Region          string `yaml:"region" json:"region"`
	Bucket          string `yaml:"bucket" json:"bucket"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"-"`
	UseSSL          bool   `yaml:"use_ssl" json:"use_ssl"`
}

// AzureStorageOpts configures the Azure Blob backend
type AzureStorageOpts struct {
	AccountName string `yaml:"account_name" json:"account_name"`
	AccountKey  string `yaml:"account_key" json:"-"`
	Container   string `yaml:"container" json:"container"`
	CDNBaseURL  string `yaml:"cdn_base_url" json:"cdn_base_url"`
}

// BunnyStorageOpts configures the Bunny Storage backend.
// APIEndpoint and CDNEndpoint must not carry a trailing slash.
type BunnyStorageOpts struct {
	// Name of the storage zone
	Bucket string `yaml:"bucket" json:"bucket"`

	// Storage API endpoint for uploads and deletes
	APIEndpoint string `yaml:"api_endpoint" json:"api_endpoint"`

	// Pull Zone connected to the storage
	CDNEndpoint string `yaml:"cdn_endpoint" json:"cdn_endpoint"`

	// Storage zone password, sent in the AccessKey header. Never logged.
	AccessKey string `yaml:"access_key" json:"-"`
}

// DatabaseConfig holds the file reference database settings
type DatabaseConfig struct {
	Path string `yaml:"path" json:"path"`
}
