package textloader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocm/go-selabel/internal/specstore"
)

func TestProcessLineSimpleRule(t *testing.T) {
	var store specstore.Store
	err := ProcessLine(&store, `/etc(/.*)?  system_u:object_r:etc_t:s0`, 1, nil)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())
	spec := store.At(0)
	assert.Equal(t, "/etc(/.*)?", string(spec.RegexStr))
	assert.Equal(t, "system_u:object_r:etc_t:s0", spec.Label.Raw)
	assert.Equal(t, specstore.ModeAny, spec.Mode)
	assert.True(t, spec.HasMetaChars)
}

func TestProcessLineWithFileTypeToken(t *testing.T) {
	var store specstore.Store
	err := ProcessLine(&store, `/etc/passwd -- system_u:object_r:etc_t:s0`, 1, nil)
	require.NoError(t, err)
	spec := store.At(0)
	assert.Equal(t, specstore.ModeRegular, spec.Mode)
	assert.False(t, spec.HasMetaChars)
	assert.Equal(t, len("/etc/passwd"), spec.PrefixLen)
}

func TestProcessLineSkipsBlankAndComment(t *testing.T) {
	var store specstore.Store
	require.NoError(t, ProcessLine(&store, "", 1, nil))
	require.NoError(t, ProcessLine(&store, "   ", 2, nil))
	require.NoError(t, ProcessLine(&store, "# a comment", 3, nil))
	assert.Equal(t, 0, store.Len())
}

func TestProcessLineTooFewFieldsIsFormatError(t *testing.T) {
	var store specstore.Store
	err := ProcessLine(&store, "/etc", 5, nil)
	assert.Error(t, err)
}

func TestProcessLineDirToken(t *testing.T) {
	var store specstore.Store
	err := ProcessLine(&store, `/tmp -d system_u:object_r:tmp_t:s0`, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, specstore.ModeDir, store.At(0).Mode)
}

func TestProcessLineRejectsFailedValidation(t *testing.T) {
	var store specstore.Store
	validate := func(raw string) (string, error) {
		return "", assert.AnError
	}
	err := ProcessLine(&store, `/etc(/.*)? system_u:object_r:etc_t:s0`, 1, validate)
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestProcessLineAppliesValidationRewrite(t *testing.T) {
	var store specstore.Store
	validate := func(raw string) (string, error) {
		return raw + ":c0", nil
	}
	err := ProcessLine(&store, `/etc(/.*)? system_u:object_r:etc_t:s0`, 1, validate)
	require.NoError(t, err)
	assert.Equal(t, "system_u:object_r:etc_t:s0:c0", store.At(0).Label.Raw)
}

func TestLoadStopsAtFirstBadLine(t *testing.T) {
	var store specstore.Store
	input := strings.Join([]string{
		`/etc(/.*)? system_u:object_r:etc_t:s0`,
		`badline`,
		`/usr(/.*)? system_u:object_r:usr_t:s0`,
	}, "\n")
	err := Load(strings.NewReader(input), &store, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestLoadAllValidLines(t *testing.T) {
	var store specstore.Store
	input := strings.Join([]string{
		"# header comment",
		`/etc(/.*)? system_u:object_r:etc_t:s0`,
		``,
		`/usr(/.*)? system_u:object_r:usr_t:s0`,
	}, "\n")
	err := Load(strings.NewReader(input), &store, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
}
