package mmappool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "region.bin")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestMapReturnsVisibleBytes(t *testing.T) {
	path := writeTempFile(t, "/usr\x00/var\x00")

	var pool Pool
	region, err := pool.Map(path)
	require.NoError(t, err)
	assert.Equal(t, "/usr\x00/var\x00", string(region.Data))
	assert.Equal(t, 1, pool.Len())
}

func TestCloseAllIsIdempotent(t *testing.T) {
	path := writeTempFile(t, "hello")

	var pool Pool
	_, err := pool.Map(path)
	require.NoError(t, err)

	require.NoError(t, pool.CloseAll())
	require.NoError(t, pool.CloseAll())
	assert.Equal(t, 0, pool.Len())
}

func TestMapRejectsEmptyFile(t *testing.T) {
	path := writeTempFile(t, "")

	var pool Pool
	_, err := pool.Map(path)
	assert.Error(t, err)
}

func TestMapRejectsMissingFile(t *testing.T) {
	var pool Pool
	_, err := pool.Map(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}
