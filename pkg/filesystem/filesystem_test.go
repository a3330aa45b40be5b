package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFS(t *testing.T) {
	fs := NewMemory()

	require.NoError(t, fs.MkdirAll("/srv/salt/_topd", 0o755))
	require.NoError(t, fs.WriteFile("/srv/salt/top.sls", []byte("base: {}"), 0o644))

	data, err := fs.ReadFile("/srv/salt/top.sls")
	require.NoError(t, err)
	assert.Equal(t, "base: {}", string(data))

	info, err := fs.Stat("/srv/salt/top.sls")
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	require.NoError(t, fs.Symlink("/srv/salt/top.sls", "/srv/salt/_topd/base|top.sls"))
	target, err := fs.Readlink("/srv/salt/_topd/base|top.sls")
	require.NoError(t, err)
	assert.Equal(t, "/srv/salt/top.sls", target)

	require.NoError(t, fs.Remove("/srv/salt/_topd/base|top.sls"))
	_, err = fs.Readlink("/srv/salt/_topd/base|top.sls")
	require.Error(t, err)
}

func TestMemoryFSReadDirAsFile(t *testing.T) {
	fs := NewMemory()
	require.NoError(t, fs.MkdirAll("/srv/salt", 0o755))

	_, err := fs.ReadFile("/srv/salt")
	require.Error(t, err)
}

func TestOSFSSymlinks(t *testing.T) {
	fs := NewOS()
	tmp := t.TempDir()

	target := filepath.Join(tmp, "salt.top")
	link := filepath.Join(tmp, "base|salt.top")
	require.NoError(t, fs.WriteFile(target, []byte(""), 0o644))
	require.NoError(t, fs.Symlink(target, link))

	got, err := fs.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	info, err := fs.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	require.NoError(t, fs.Remove(link))
	_, err = fs.Lstat(link)
	require.Error(t, err)
}
