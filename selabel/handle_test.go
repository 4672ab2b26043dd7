package selabel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocm/go-selabel/internal/specstore"
)

func writeRuleFile(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "file_contexts")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestS1BasicMatch(t *testing.T) {
	path := writeRuleFile(t,
		`/.* system_u:object_r:default_t`,
		`/etc(/.*)? system_u:object_r:etc_t`,
	)
	h, err := Init(Environment{Paths: []string{path}})
	require.NoError(t, err)
	defer h.Close()

	label, err := h.Lookup("/etc/passwd", specstore.ModeRegular)
	require.NoError(t, err)
	assert.Equal(t, "system_u:object_r:etc_t", label.Raw)
}

func TestS2StemNarrowing(t *testing.T) {
	path := writeRuleFile(t,
		`/.* system_u:object_r:default_t`,
		`/etc(/.*)? system_u:object_r:etc_t`,
		`/usr(/.*)? system_u:object_r:usr_t`,
	)
	h, err := Init(Environment{Paths: []string{path}})
	require.NoError(t, err)
	defer h.Close()

	label, err := h.Lookup("/usr/bin/ls", specstore.ModeRegular)
	require.NoError(t, err)
	assert.Equal(t, "system_u:object_r:usr_t", label.Raw)

	label, err = h.Lookup("/etc/passwd", specstore.ModeRegular)
	require.NoError(t, err)
	assert.Equal(t, "system_u:object_r:etc_t", label.Raw)
}

func TestS3ModeFilter(t *testing.T) {
	path := writeRuleFile(t,
		`/.* system_u:object_r:default_t`,
		`/tmp/.* -- system_u:object_r:tmp_t`,
	)
	h, err := Init(Environment{Paths: []string{path}})
	require.NoError(t, err)
	defer h.Close()

	label, err := h.Lookup("/tmp/x", specstore.ModeDir)
	require.NoError(t, err)
	assert.Equal(t, "system_u:object_r:default_t", label.Raw)

	label, err = h.Lookup("/tmp/x", specstore.ModeRegular)
	require.NoError(t, err)
	assert.Equal(t, "system_u:object_r:tmp_t", label.Raw)
}

func TestS4NoneSentinel(t *testing.T) {
	path := writeRuleFile(t,
		`/proc/kcore <<none>>`,
	)
	h, err := Init(Environment{Paths: []string{path}})
	require.NoError(t, err)
	defer h.Close()

	_, err = h.Lookup("/proc/kcore", specstore.ModeRegular)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS5BestMatchWithAlias(t *testing.T) {
	path := writeRuleFile(t,
		`/home(/.*)? system_u:object_r:home_t`,
		`/export/home(/.*)? system_u:object_r:export_home_t`,
	)
	h, err := Init(Environment{Paths: []string{path}})
	require.NoError(t, err)
	defer h.Close()

	label, err := h.BestMatch("/home/alice", []string{"/export/home/alice"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "system_u:object_r:export_home_t", label.Raw)
}

func TestS6CmpSubset(t *testing.T) {
	pathA := writeRuleFile(t,
		`/etc/passwd -- system_u:object_r:passwd_t`,
		`/A(/.*)? system_u:object_r:a_t`,
	)
	pathB := writeRuleFile(t,
		`/etc/passwd -- system_u:object_r:passwd_t`,
		`/A(/.*)? system_u:object_r:a_t`,
		`/C(/.*)? system_u:object_r:c_t`,
	)

	h1, err := Init(Environment{Paths: []string{pathA}})
	require.NoError(t, err)
	defer h1.Close()
	h2, err := Init(Environment{Paths: []string{pathB}})
	require.NoError(t, err)
	defer h2.Close()

	assert.Equal(t, CmpSubset, h1.Cmp(h2))
	assert.Equal(t, CmpSuperset, h2.Cmp(h1))
}

func TestInitValidatingRejectsConflictingDuplicates(t *testing.T) {
	path := writeRuleFile(t,
		`/etc/passwd -- system_u:object_r:passwd_t`,
		`/etc/passwd -- system_u:object_r:other_t`,
	)
	_, err := Init(Environment{Paths: []string{path}, Validating: true})
	assert.ErrorIs(t, err, ErrDuplicateSpec)
}

func TestInitValidateRejectsBadContext(t *testing.T) {
	path := writeRuleFile(t,
		`/etc/passwd -- not_a_valid_context`,
	)
	validate := func(rawContext string) error {
		if !strings.Contains(rawContext, ":") {
			return fmt.Errorf("missing SELinux field separators")
		}
		return nil
	}
	_, err := Init(Environment{Paths: []string{path}, Validate: validate})
	assert.ErrorIs(t, err, ErrValidate)
}

func TestInitValidateAcceptsGoodContext(t *testing.T) {
	path := writeRuleFile(t,
		`/etc/passwd -- system_u:object_r:passwd_t`,
	)
	validate := func(rawContext string) error {
		if !strings.Contains(rawContext, ":") {
			return fmt.Errorf("missing SELinux field separators")
		}
		return nil
	}
	h, err := Init(Environment{Paths: []string{path}, Validate: validate})
	require.NoError(t, err)
	defer h.Close()

	label, err := h.Lookup("/etc/passwd", specstore.ModeRegular)
	require.NoError(t, err)
	assert.Equal(t, "system_u:object_r:passwd_t", label.Raw)
}

func TestCloseIsIdempotent(t *testing.T) {
	path := writeRuleFile(t, `/.* system_u:object_r:default_t`)
	h, err := Init(Environment{Paths: []string{path}})
	require.NoError(t, err)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
}

func TestSubsetFilterRestrictsLoadedSpecs(t *testing.T) {
	path := writeRuleFile(t,
		`/etc(/.*)? system_u:object_r:etc_t`,
		`/usr(/.*)? system_u:object_r:usr_t`,
	)
	h, err := Init(Environment{Paths: []string{path}, Subset: "/etc"})
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, 1, h.SpecCount())
}
