package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/nanocube/pkg/errors"
)

// Local implements Storage on the filesystem below a base directory.
type Local struct {
	basePath string
}

func newLocal(basePath string) (*Local, error) {
	if basePath == "" {
		basePath = "./storage"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "create storage directory", err)
	}
	return &Local{basePath: basePath}, nil
}

// Fetch opens the file at the given key for reading.
func (s *Local) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.CodeNotFound, "object not found: %s", key)
		}
		return nil, errors.Wrap(errors.CodeStorageError, "open object", err)
	}
	return file, nil
}

// Put writes the reader's content to the file at the given key.
func (s *Local) Put(ctx context.Context, key string, reader io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := s.path(key)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return errors.Wrap(errors.CodeStorageError, "create object directory", err)
	}
	file, err := os.Create(full)
	if err != nil {
		return errors.Wrap(errors.CodeStorageError, "create object", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return errors.Wrap(errors.CodeStorageError, "write object", err)
	}
	return nil
}

// Exists checks whether the file exists.
func (s *Local) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(errors.CodeStorageError, "stat object", err)
	}
	return true, nil
}

// URL returns the filesystem path of the key.
func (s *Local) URL(key string) string {
	return s.path(key)
}

func (s *Local) path(key string) string {
	return filepath.Join(s.basePath, key)
}
