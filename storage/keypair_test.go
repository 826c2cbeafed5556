package storage

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndLoad(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "keys", "id.json")
	store, err := NewKeypairStore(path)
	require.NoError(err)
	require.Equal(path, store.Path())

	exists, err := store.Exists()
	require.NoError(err)
	require.False(exists)

	key, err := store.Generate()
	require.NoError(err)

	info, err := os.Stat(path)
	require.NoError(err)
	require.Equal(os.FileMode(0600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(err)
	require.Equal(key, loaded)
	require.Equal(key.PublicKey(), loaded.PublicKey())
}

func TestSaveWritesKeygenFormat(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "id.json")
	store, err := NewKeypairStore(path)
	require.NoError(err)

	key, err := solana.NewRandomPrivateKey()
	require.NoError(err)
	require.NoError(store.Save(key))

	data, err := os.ReadFile(path)
	require.NoError(err)
	var ints []int
	require.NoError(json.Unmarshal(data, &ints))
	require.Len(ints, 64)
	for i, v := range ints {
		require.Equal(int(key[i]), v)
	}
}

func TestSaveRefusesOverwrite(t *testing.T) {
	require := require.New(t)

	store, err := NewKeypairStore(filepath.Join(t.TempDir(), "id.json"))
	require.NoError(err)
	_, err = store.Generate()
	require.NoError(err)

	_, err = store.Generate()
	require.Error(err)
}

func TestLoadAcceptsBase64(t *testing.T) {
	require := require.New(t)

	key, err := solana.NewRandomPrivateKey()
	require.NoError(err)
	encoded, err := json.Marshal(base64.StdEncoding.EncodeToString(key))
	require.NoError(err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(os.WriteFile(path, encoded, 0600))

	store, err := NewKeypairStore(path)
	require.NoError(err)
	loaded, err := store.Load()
	require.NoError(err)
	require.Equal(key, loaded)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]string{
		"short": "[1,2,3]",
		"text":  "not json",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))
			store, err := NewKeypairStore(path)
			require.NoError(t, err)
			_, err = store.Load()
			require.Error(t, err)
		})
	}

	store, err := NewKeypairStore(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	_, err = store.Load()
	require.Error(t, err)
}

func TestDefaultKeypairPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	path, err := DefaultKeypairPath()
	require.NoError(t, err)
	require.Equal(t, "/home/tester/.config/solana/id.json", path)

	store, err := NewKeypairStore("")
	require.NoError(t, err)
	require.Equal(t, path, store.Path())
}
