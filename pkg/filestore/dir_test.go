package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirStoreRead(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2022"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "2022", "sem1.csv"), []byte("roll_num\n"), 0o600))

	store, err := NewDirStore(root)
	require.NoError(t, err)

	data, err := store.Read(context.Background(), "2022/sem1.csv")
	require.NoError(t, err)
	require.Equal(t, "roll_num\n", string(data))

	for _, id := range []string{"2022/sem2.csv", "../etc/passwd", "", "/etc/passwd"} {
		_, err := store.Read(context.Background(), id)
		require.ErrorIs(t, err, ErrFileNotFound, id)
	}
}

func TestNewDirStoreRejectsFiles(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err := NewDirStore(file)
	require.Error(t, err)

	_, err = NewDirStore(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
