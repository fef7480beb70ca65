package database

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/resultboard-api/internal/config"
	"github.com/noah-isme/resultboard-api/internal/models"
)

func TestConnectSQLiteAndMigrate(t *testing.T) {
	db, err := Connect("sqlite", "file:database_test?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.True(t, db.Migrator().HasTable(&models.Degree{}))
	require.NoError(t, Close(db))
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("mongo", "mongodb://localhost")
	require.Error(t, err)

	_, err = ConnectPostgres("")
	require.Error(t, err)
}

func TestConnectDefaultsToPostgres(t *testing.T) {
	_, err := Connect("", "")
	require.ErrorContains(t, err, "postgres dsn must not be empty")

	_, err = Connect(config.DefaultDatabaseDriver, "")
	require.ErrorContains(t, err, "postgres dsn must not be empty")
}

func TestConnectRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client, err := ConnectRedis("redis://" + server.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = ConnectRedis("")
	require.Error(t, err)
}
