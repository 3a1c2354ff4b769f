// Package store keeps analyzer reports, one object per run, in a file
// directory, a Postgres table or an S3 bucket.
package store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/danielolaszy/opsintel/internal/config"
	"github.com/danielolaszy/opsintel/internal/logging"
	"github.com/spf13/afero"
)

var (
	// ErrNotFound is returned for keys with no stored object.
	ErrNotFound = errors.New("run not found")
	// ErrInvalidKey is returned for keys that are not plain object names.
	ErrInvalidKey = errors.New("invalid run key")
)

// Object describes a stored run.
type Object struct {
	Key          string    `json:"key"`
	LastModified time.Time `json:"last_modified"`
	Size         int64     `json:"size"`
}

// Store persists run reports by key.
type Store interface {
	// Put writes body under key, replacing any previous object.
	Put(ctx context.Context, key string, body []byte) error
	// List returns all stored objects, newest first.
	List(ctx context.Context) ([]Object, error)
	// Get returns the body stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Close() error
}

const runKeyLayout = "2006-01-02T15-04-05"

// RunKey names the object a run finished at t is stored under, e.g.
// run_2024-06-14T15-30-00.json.
func RunKey(t time.Time) string {
	return "run_" + t.Format(runKeyLayout) + ".json"
}

// ValidateKey rejects keys that could escape a directory or bucket prefix.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || path.Base(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Latest returns the newest stored run.
func Latest(ctx context.Context, s Store) (Object, []byte, error) {
	objects, err := s.List(ctx)
	if err != nil {
		return Object{}, nil, err
	}
	if len(objects) == 0 {
		return Object{}, nil, ErrNotFound
	}

	body, err := s.Get(ctx, objects[0].Key)
	if err != nil {
		return Object{}, nil, err
	}
	return objects[0], body, nil
}

// sortNewestFirst orders objects by modification time, newest first. Ties
// fall back to the key, which for run keys is also chronological.
func sortNewestFirst(objects []Object) {
	sort.SliceStable(objects, func(i, j int) bool {
		if !objects[i].LastModified.Equal(objects[j].LastModified) {
			return objects[i].LastModified.After(objects[j].LastModified)
		}
		return objects[i].Key > objects[j].Key
	})
}

// Open builds the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		logging.Debug("opening file store", "dir", cfg.Dir)
		return NewFileStore(afero.NewOsFs(), cfg.Dir), nil
	case config.BackendPostgres:
		logging.Debug("opening postgres store", "database_url", logging.MaskSensitive(cfg.DatabaseURL))
		return OpenPostgres(ctx, cfg.DatabaseURL)
	case config.BackendS3:
		logging.Debug("opening s3 store", "bucket", cfg.S3.Bucket, "endpoint", cfg.S3.Endpoint)
		return OpenS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
