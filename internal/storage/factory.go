package storage

import (
	"fmt"

	"github.com/filedepot/filedepot/pkg/types"
)

// NewBackend creates a new storage backend based on the configuration
func NewBackend(cfg types.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case types.BackendLocal:
		return NewLocalBackend(cfg.Local.BasePath)
	case types.BackendS3:
		return NewS3Backend(cfg.S3)
	case types.BackendAzure:
		return NewAzureBackend(cfg.Azure)
	case types.BackendBunny:
		return NewBunnyBackend(cfg.Bunny)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
