package specfile

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocm/go-selabel/internal/binformat"
)

func writeFile(t *testing.T, path string, data []byte, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestCandidatesPicksBinOnTie(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "file_contexts")
	same := time.Unix(1000, 0)
	writeFile(t, base, []byte("plain"), same)
	writeFile(t, base+".bin", []byte("bin"), same)

	cands, err := Candidates(base, "")
	require.NoError(t, err)
	require.Len(t, cands, 2)
	newest, ok := Newest(cands)
	require.True(t, ok)
	assert.True(t, newest.IsBin)
}

func TestCandidatesPicksLatestModTime(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "file_contexts")
	writeFile(t, base, []byte("plain"), time.Unix(2000, 0))
	writeFile(t, base+".bin", []byte("bin"), time.Unix(1000, 0))

	cands, err := Candidates(base, "")
	require.NoError(t, err)
	newest, ok := Newest(cands)
	require.True(t, ok)
	assert.False(t, newest.IsBin)
}

func TestCandidatesMissingFilesYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "does_not_exist")
	cands, err := Candidates(base, "")
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestOldestSkipsNewest(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "file_contexts")
	writeFile(t, base, []byte("plain"), time.Unix(1000, 0))
	writeFile(t, base+".bin", []byte("bin"), time.Unix(2000, 0))

	cands, err := Candidates(base, "")
	require.NoError(t, err)
	newest, ok := Newest(cands)
	require.True(t, ok)
	oldest, ok := Oldest(cands, newest)
	require.True(t, ok)
	assert.NotEqual(t, newest.Path, oldest.Path)
	assert.False(t, oldest.IsBin)
}

func TestSniffDetectsMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file_contexts.bin")
	var head [4]byte
	binary.LittleEndian.PutUint32(head[:], binformat.Magic)
	require.NoError(t, os.WriteFile(path, head[:], 0o644))

	isBin, err := Sniff(path)
	require.NoError(t, err)
	assert.True(t, isBin)
}

func TestSniffRejectsTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file_contexts")
	require.NoError(t, os.WriteFile(path, []byte("/etc(/.*)? foo\n"), 0o644))

	isBin, err := Sniff(path)
	require.NoError(t, err)
	assert.False(t, isBin)
}

func TestResolveFallsBackToOldestOnFailure(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "file_contexts")
	writeFile(t, base, []byte("plain"), time.Unix(1000, 0))
	writeFile(t, base+".bin", []byte("bin"), time.Unix(2000, 0))

	var tried []string
	err := Resolve(base, "", func(c Candidate) error {
		tried = append(tried, c.Path)
		if c.IsBin {
			return errors.New("corrupt bin")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{base + ".bin", base}, tried)
}

func TestResolveFailsWhenNoCandidateExists(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "nope")
	err := Resolve(base, "", func(c Candidate) error { return nil })
	assert.Error(t, err)
}

func TestResolveReturnsNewestErrorWhenBothFail(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "file_contexts")
	writeFile(t, base, []byte("plain"), time.Unix(1000, 0))
	writeFile(t, base+".bin", []byte("bin"), time.Unix(2000, 0))

	newestErr := errors.New("newest failed")
	err := Resolve(base, "", func(c Candidate) error {
		if c.IsBin {
			return newestErr
		}
		return errors.New("oldest also failed")
	})
	assert.ErrorIs(t, err, newestErr)
}
