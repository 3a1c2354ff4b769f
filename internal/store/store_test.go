package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielolaszy/opsintel/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunKey(t *testing.T) {
	at := time.Date(2024, 6, 14, 15, 30, 5, 999, time.UTC)
	assert.Equal(t, "run_2024-06-14T15-30-05.json", RunKey(at))
	assert.NoError(t, ValidateKey(RunKey(at)))

	earlier := RunKey(at.Add(-time.Minute))
	assert.Less(t, earlier, RunKey(at), "run keys sort chronologically")
}

func TestValidateKey(t *testing.T) {
	testCases := []struct {
		key     string
		wantErr bool
	}{
		{key: "run_2024-06-14T15-30-05.json"},
		{key: "", wantErr: true},
		{key: ".", wantErr: true},
		{key: "..", wantErr: true},
		{key: "../etc/passwd", wantErr: true},
		{key: "nested/run.json", wantErr: true},
		{key: `windows\run.json`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			err := ValidateKey(tc.key)
			if tc.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidKey))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	objects := []Object{
		{Key: "run_a.json", LastModified: base},
		{Key: "run_c.json", LastModified: base.Add(time.Hour)},
		{Key: "run_b.json", LastModified: base},
	}

	sortNewestFirst(objects)

	keys := []string{objects[0].Key, objects[1].Key, objects[2].Key}
	assert.Equal(t, []string{"run_c.json", "run_b.json", "run_a.json"}, keys)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(afero.NewMemMapFs(), "data")

	t.Run("Empty directory", func(t *testing.T) {
		objects, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, objects)

		_, _, err = Latest(ctx, s)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("Put and get", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "run_2024-06-13T10-00-00.json", []byte(`{"n":1}`)))
		require.NoError(t, s.Put(ctx, "run_2024-06-14T10-00-00.json", []byte(`{"n":2}`)))

		body, err := s.Get(ctx, "run_2024-06-13T10-00-00.json")
		require.NoError(t, err)
		assert.Equal(t, `{"n":1}`, string(body))
	})

	t.Run("List newest first", func(t *testing.T) {
		objects, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, objects, 2)
		assert.Equal(t, "run_2024-06-14T10-00-00.json", objects[0].Key)
		assert.Equal(t, int64(len(`{"n":2}`)), objects[0].Size)
	})

	t.Run("Latest", func(t *testing.T) {
		obj, body, err := Latest(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, "run_2024-06-14T10-00-00.json", obj.Key)
		assert.Equal(t, `{"n":2}`, string(body))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "run_2024-06-14T10-00-00.json", []byte(`{"n":3}`)))
		body, err := s.Get(ctx, "run_2024-06-14T10-00-00.json")
		require.NoError(t, err)
		assert.Equal(t, `{"n":3}`, string(body))
	})

	t.Run("Missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "run_1999-01-01T00-00-00.json")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("Invalid key", func(t *testing.T) {
		assert.True(t, errors.Is(s.Put(ctx, "../escape.json", []byte(`{}`)), ErrInvalidKey))
		_, err := s.Get(ctx, "../escape.json")
		assert.True(t, errors.Is(err, ErrInvalidKey))
	})

	t.Run("Ignores other files", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, fsys.MkdirAll("data/sub.json", 0o755))
		require.NoError(t, afero.WriteFile(fsys, "data/notes.txt", []byte("x"), 0o644))

		objects, err := NewFileStore(fsys, "data").List(ctx)
		require.NoError(t, err)
		assert.Empty(t, objects)
	})
}

func TestOpenFileBackend(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{Backend: config.BackendFile, Dir: t.TempDir()})
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.(*FileStore)
	assert.True(t, ok)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Backend: "redis"})
	assert.Error(t, err)
}
