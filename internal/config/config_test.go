package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDirFileStore(t *testing.T) {
	t.Setenv("RESULTBOARD_DATABASE_DRIVER", "sqlite")
	t.Setenv("RESULTBOARD_DATABASE_URL", "file::memory:")
	t.Setenv("RESULTBOARD_FILESTORE_DRIVER", "dir")
	t.Setenv("RESULTBOARD_FILESTORE_DIR", "/srv/results")
	t.Setenv("RESULTBOARD_METADATA_CACHE_TTL", "90s")
	t.Setenv("RESULTBOARD_RESULTS_SEMESTER_CONCURRENCY", "0")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, FileStoreDir, cfg.FileStoreDriver)
	require.Equal(t, 90*time.Second, cfg.MetadataCacheTTL)
	require.Equal(t, 4, cfg.SemesterConcurrency)
	require.Equal(t, 30, cfg.ResultRateLimit)
	require.Equal(t, "resultboard.contact", cfg.NATSContactSubject)
	require.Equal(t, ":8080", cfg.HTTPAddress())
}

func TestLoadRequiresCloudinaryCredentials(t *testing.T) {
	t.Setenv("RESULTBOARD_DATABASE_URL", "postgres://localhost/resultboard")
	t.Setenv("RESULTBOARD_FILESTORE_DRIVER", "cloudinary")

	_, err := Load()
	require.ErrorContains(t, err, "cloudinary credentials")
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("RESULTBOARD_DATABASE_URL", "postgres://localhost/resultboard")
	t.Setenv("RESULTBOARD_FILESTORE_DRIVER", "dir")
	t.Setenv("RESULTBOARD_FILESTORE_DIR", "/srv/results")
	t.Setenv("RESULTBOARD_REQUEST_TIMEOUT", "soon")

	_, err := Load()
	require.ErrorContains(t, err, "invalid request.timeout")
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv("RESULTBOARD_DATABASE_DRIVER", "mysql")
	t.Setenv("RESULTBOARD_DATABASE_URL", "root@/results")

	_, err := LoadDatabase()
	require.ErrorContains(t, err, "unsupported database driver")

	t.Setenv("RESULTBOARD_DATABASE_DRIVER", "sqlite")
	t.Setenv("RESULTBOARD_REDIS_URL", "redis://localhost:6379/0")
	cfg, err := LoadDatabase()
	require.NoError(t, err)
	require.Equal(t, DatabaseConfig{Driver: "sqlite", URL: "root@/results", RedisURL: "redis://localhost:6379/0"}, cfg)
}

func TestLoadDatabaseDefaultsToPostgres(t *testing.T) {
	t.Setenv("RESULTBOARD_DATABASE_DRIVER", "")
	t.Setenv("RESULTBOARD_DATABASE_URL", "")

	cfg, err := LoadDatabase()
	require.NoError(t, err)
	require.Equal(t, DriverPostgres, cfg.Driver)
	require.Equal(t, DefaultDatabaseDriver, cfg.Driver)
	require.Empty(t, cfg.URL)
}

func TestHTTPAddressKeepsColon(t *testing.T) {
	require.Equal(t, ":9000", Config{AppPort: ":9000"}.HTTPAddress())
}
