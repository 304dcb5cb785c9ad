// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	l := New("out")
	assert.Equal(t, filepath.Join("out", "profiles", "jane-doe.yaml"), l.ProfilePath("jane-doe"))
	assert.Equal(t, filepath.Join("out", "responses", "jane-doe.txt"), l.ResponsePath("jane-doe"))
	assert.Equal(t, filepath.Join("out", "images", "jane-doe.png"), l.ImagePath("jane-doe"))
	assert.Equal(t, filepath.Join("out", "ledger.db"), l.LedgerPath())

	assert.Equal(t, DefaultRoot, New("").Root)
}

func TestEnsureDirs(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "outputs"))
	require.NoError(t, l.EnsureDirs())

	for _, dir := range []string{l.ProfilesDir(), l.ResponsesDir(), l.ImagesDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir(), dir)
	}
}

func TestHasChanged(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.yaml")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o644))

	changed, err := HasChanged(src, dst)
	require.NoError(t, err)
	assert.True(t, changed, "missing output must be regenerated")

	require.NoError(t, os.WriteFile(dst, []byte("b"), 0o644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(src, old, old))

	changed, err = HasChanged(src, dst)
	require.NoError(t, err)
	assert.False(t, changed, "output newer than input is up to date")

	newer := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, newer, newer))

	changed, err = HasChanged(src, dst)
	require.NoError(t, err)
	assert.True(t, changed, "input newer than output must be regenerated")

	_, err = HasChanged(filepath.Join(dir, "missing"), dst)
	assert.Error(t, err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	require.NoError(t, WriteFileAtomic(path, []byte("hello")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	err = WriteAtomic(path, failingReader{})
	require.Error(t, err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data), "failed write must not clobber existing file")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be cleaned up")
}

func TestWriteAtomicFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portrait.png")
	require.NoError(t, WriteFileAtomic(path, []byte("png")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
