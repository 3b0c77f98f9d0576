package factory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	redisstorage "github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage/redis"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/testutil"
)

func TestNewMemoryWithCatalogFile(t *testing.T) {
	app, err := New(context.Background(), Config{
		CatalogPath: "../../data/catalog.yaml",
		Logger:      testutil.NopLogger(),
	})
	require.NoError(t, err)
	app.Start()
	t.Cleanup(func() { _ = app.Close() })

	assert.Equal(t, 10, app.Catalog.Count())
	assert.False(t, app.AuthService.Enabled())
	assert.Equal(t, 25, app.ScoringService.RoundDuration())
}

func TestNewFromFlagsDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"chile.png", "fiji.png", "japan.svg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o600))
	}
	hints := filepath.Join(t.TempDir(), "hints.yaml")
	require.NoError(t, os.WriteFile(hints, []byte("chile:\n  capital: Santiago\n"), 0o600))

	app, err := New(context.Background(), Config{FlagsDir: dir, HintsPath: hints, CatalogPath: "ignored.yaml"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.Equal(t, 3, app.Catalog.Count())
	record, err := app.Catalog.Lookup(model.FlagCode("chile"))
	require.NoError(t, err)
	assert.Equal(t, "Santiago", record.Hints.Capital)
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://" + mr.Addr()

	app, err := New(context.Background(), Config{StorageType: StorageTypeRedis, RedisConfig: &redisCfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	_, ok := app.Storage.(*redisstorage.Storage)
	assert.True(t, ok)
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "unknown storage", cfg: Config{StorageType: "sqlite"}},
		{name: "redis without config", cfg: Config{StorageType: StorageTypeRedis}},
		{name: "postgres without config", cfg: Config{StorageType: StorageTypePostgres}},
		{name: "missing catalog", cfg: Config{CatalogPath: "does/not/exist.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.cfg)
			assert.Error(t, err)
		})
	}
}
