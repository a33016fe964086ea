// Package storage abstracts where dataset files live: the local filesystem
// or a Tencent COS bucket. The ingest command pulls raw datasets through it;
// cube images are written to the local filesystem, not through it.
package storage

import (
	"context"
	"io"

	"github.com/nanocube/pkg/config"
	"github.com/nanocube/pkg/errors"
)

// Storage is the interface dataset ingestion works against.
type Storage interface {
	// Fetch opens the object at the given key for reading.
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)

	// Put writes the reader's content to the given key.
	Put(ctx context.Context, key string, reader io.Reader) error

	// Exists checks whether an object exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a location string for the key, for logs and the catalog.
	URL(key string) string
}

// Type represents the storage backend kind.
type Type string

const (
	// TypeLocal stores objects on the local filesystem.
	TypeLocal Type = "local"
	// TypeCOS stores objects in a Tencent COS bucket.
	TypeCOS Type = "cos"
)

// New creates a Storage from the configuration.
func New(cfg *config.StorageConfig) (Storage, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	switch Type(cfg.Type) {
	case TypeCOS:
		return newCOS(cfg)
	default:
		return newLocal(cfg.LocalPath)
	}
}

func validate(cfg *config.StorageConfig) error {
	if cfg == nil {
		return errors.New(errors.CodeConfigError, "storage config is nil")
	}
	t := Type(cfg.Type)
	if t == "" {
		t = TypeLocal
	}
	switch t {
	case TypeLocal:
		if cfg.LocalPath == "" {
			return errors.New(errors.CodeConfigError, "local storage path is required")
		}
	case TypeCOS:
		if cfg.Bucket == "" || cfg.Region == "" {
			return errors.New(errors.CodeConfigError, "COS bucket and region are required")
		}
		if cfg.SecretID == "" || cfg.SecretKey == "" {
			return errors.New(errors.CodeConfigError, "COS credentials are required")
		}
	default:
		return errors.Newf(errors.CodeConfigError, "unsupported storage type: %s", cfg.Type)
	}
	return nil
}
