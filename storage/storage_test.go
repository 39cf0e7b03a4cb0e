package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egor/portfolioclient/storage"
)

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	f := storage.NewFile(path)

	require.Empty(t, f.Token(), "нет файла — нет сессии")

	require.NoError(t, f.SetToken("aaa.bbb.ccc"))
	require.Equal(t, "aaa.bbb.ccc", f.Token())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("aaa.bbb.ccc\n"), 0o600))

	f := storage.NewFile(path)
	require.Equal(t, "aaa.bbb.ccc", f.Token())
}

func TestFileClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	f := storage.NewFile(path)
	require.NoError(t, f.SetToken("x"))

	require.NoError(t, f.Clear())
	require.Empty(t, f.Token())

	// повторная очистка при отсутствии файла не ошибка
	require.NoError(t, f.Clear())
}

func TestMemory(t *testing.T) {
	m := storage.NewMemory()
	require.Empty(t, m.Token())
	require.NoError(t, m.SetToken("x"))
	require.Equal(t, "x", m.Token())
	require.NoError(t, m.Clear())
	require.Empty(t, m.Token())
}
