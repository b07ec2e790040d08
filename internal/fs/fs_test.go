package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	f, err := lfs.CreateTemp(tmp, "data-*.tmp")
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.NoError(t, f.Sync())
	assert.NoError(t, f.Close())

	target := filepath.Join(tmp, "data.bin")
	require.NoError(t, lfs.Rename(f.Name(), target))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	assert.NoError(t, lfs.Remove(target))
	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS_WriteLimit(t *testing.T) {
	ffs := NewFaultyFS(nil)
	ffs.AddRule(".tmp", Fault{FailAfterBytes: 4})

	f, err := ffs.CreateTemp(t.TempDir(), "x-*.tmp")
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = f.Write([]byte("de"))
	assert.ErrorIs(t, err, ErrInjected)
}

func TestFaultyFS_SyncCloseRename(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("bad", Fault{FailAfterBytes: -1, FailOnSync: true, FailOnClose: true, FailOnRename: true})

	f, err := ffs.CreateTemp(tmp, "bad-*.tmp")
	require.NoError(t, err)

	_, err = f.Write([]byte("ok"))
	require.NoError(t, err)
	assert.ErrorIs(t, f.Sync(), ErrInjected)
	assert.ErrorIs(t, f.Close(), ErrInjected)
	assert.ErrorIs(t, ffs.Rename(f.Name(), filepath.Join(tmp, "out")), ErrInjected)
}

func TestFaultyFS_NoRule(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(LocalFS{})

	f, err := ffs.CreateTemp(tmp, "good-*.tmp")
	require.NoError(t, err)
	_, err = f.Write(make([]byte, 1<<10))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())
	require.NoError(t, ffs.Rename(f.Name(), filepath.Join(tmp, "out")))
}
