package binloader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocm/go-selabel/internal/binformat"
	"github.com/holocm/go-selabel/internal/regexengine"
	"github.com/holocm/go-selabel/internal/selerrors"
	"github.com/holocm/go-selabel/internal/specstore"
	"github.com/holocm/go-selabel/internal/stemtable"
)

// builder assembles a synthetic compiled rule file byte-for-byte, mirroring
// the layout in spec.md §6.1 (and this implementation's blob-length-prefix
// convention for the serialized_regex tail).
type builder struct {
	buf bytes.Buffer
}

func (b *builder) u32(v uint32) *builder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *builder) i32(v int32) *builder { return b.u32(uint32(v)) }

func (b *builder) raw(data []byte) *builder {
	b.buf.Write(data)
	return b
}

func (b *builder) nulString(s string) *builder {
	b.buf.WriteString(s)
	b.buf.WriteByte(0)
	return b
}

func newFullHeader(version uint32, engineVersion, archString string) *builder {
	b := &builder{}
	b.u32(binformat.Magic).u32(version)
	if version >= binformat.VersionPCRE {
		b.u32(uint32(len(engineVersion))).raw([]byte(engineVersion))
		if version >= binformat.VersionRegexArch {
			b.u32(uint32(len(archString))).raw([]byte(archString))
		}
	}
	return b
}

func (b *builder) stems(stems ...string) *builder {
	b.u32(uint32(len(stems)))
	for _, s := range stems {
		b.u32(uint32(len(s))).nulString(s)
	}
	return b
}

type specFixture struct {
	ctx       string
	regex     string
	mode      uint32
	stemID    int32
	hasMeta   bool
	prefixLen uint32
	version   uint32
}

func (b *builder) spec(f specFixture) *builder {
	b.u32(uint32(len(f.ctx) + 1)).nulString(f.ctx)
	b.u32(uint32(len(f.regex) + 1)).nulString(f.regex)
	b.u32(f.mode)
	b.i32(f.stemID)
	meta := uint32(0)
	if f.hasMeta {
		meta = 1
	}
	b.u32(meta)
	if f.version >= binformat.VersionPrefixLen {
		b.u32(f.prefixLen)
	}
	b.u32(0) // blobLen: no serialized regex in these fixtures
	return b
}

func TestLoadHappyPath(t *testing.T) {
	engine := &regexengine.Regexp2Engine{}
	b := newFullHeader(binformat.MaxKnownVersion, engine.Version(), engine.ArchString())
	b.stems("/etc", "/usr")
	b.u32(2) // spec_count
	b.spec(specFixture{ctx: "system_u:object_r:etc_t", regex: "/etc(/.*)?", mode: 0, stemID: 0, hasMeta: true, prefixLen: 4, version: binformat.MaxKnownVersion})
	b.spec(specFixture{ctx: "system_u:object_r:usr_t", regex: "/usr(/.*)?", mode: 0, stemID: 1, hasMeta: true, prefixLen: 4, version: binformat.MaxKnownVersion})

	var stems stemtable.Table
	var store specstore.Store
	err := Load(b.buf.Bytes(), &stems, &store, engine, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stems.Len())
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, "system_u:object_r:etc_t", store.At(0).Label.Raw)
	assert.True(t, store.At(0).FromMmapRegex)
	stem, ok := stems.Get(store.At(0).StemID)
	require.True(t, ok)
	assert.Equal(t, "/etc", string(stem.Buf))
}

func TestLoadRejectsBadMagic(t *testing.T) {
	engine := &regexengine.Regexp2Engine{}
	b := &builder{}
	b.u32(0xdeadbeef).u32(binformat.VersionBase)

	var stems stemtable.Table
	var store specstore.Store
	err := Load(b.buf.Bytes(), &stems, &store, engine, nil)
	assert.ErrorIs(t, err, selerrors.ErrFormat)
}

func TestLoadRejectsVersionTooNew(t *testing.T) {
	engine := &regexengine.Regexp2Engine{}
	b := &builder{}
	b.u32(binformat.Magic).u32(binformat.MaxKnownVersion + 1)

	var stems stemtable.Table
	var store specstore.Store
	err := Load(b.buf.Bytes(), &stems, &store, engine, nil)
	assert.ErrorIs(t, err, selerrors.ErrFormat)
}

func TestLoadRejectsEngineVersionMismatch(t *testing.T) {
	engine := &regexengine.Regexp2Engine{}
	b := newFullHeader(binformat.VersionPCRE, "some-other-engine", "")
	b.stems("/etc")
	b.u32(1)
	b.spec(specFixture{ctx: "x", regex: "/etc", mode: 0, stemID: -1, hasMeta: false, version: binformat.VersionPCRE})

	var stems stemtable.Table
	var store specstore.Store
	err := Load(b.buf.Bytes(), &stems, &store, engine, nil)
	assert.ErrorIs(t, err, selerrors.ErrVersionMismatch)
}

func TestLoadRejectsZeroStemCount(t *testing.T) {
	engine := &regexengine.Regexp2Engine{}
	b := newFullHeader(binformat.VersionBase, engine.Version(), engine.ArchString())
	b.u32(0) // stem_count

	var stems stemtable.Table
	var store specstore.Store
	err := Load(b.buf.Bytes(), &stems, &store, engine, nil)
	assert.ErrorIs(t, err, selerrors.ErrFormat)
}

func TestLoadRejectsMissingTrailingNULOnStem(t *testing.T) {
	engine := &regexengine.Regexp2Engine{}
	b := newFullHeader(binformat.VersionBase, engine.Version(), engine.ArchString())
	b.u32(1) // stem_count
	b.u32(4) // stem_len
	b.raw([]byte("/etc!")) // '!' where the trailing NUL belongs

	var stems stemtable.Table
	var store specstore.Store
	err := Load(b.buf.Bytes(), &stems, &store, engine, nil)
	assert.ErrorIs(t, err, selerrors.ErrFormat)
}

func TestLoadOutOfRangeStemIDDegradesToNegativeOne(t *testing.T) {
	engine := &regexengine.Regexp2Engine{}
	b := newFullHeader(binformat.VersionBase, engine.Version(), engine.ArchString())
	b.stems("/etc")
	b.u32(1)
	b.spec(specFixture{ctx: "x", regex: "/.*", mode: 0, stemID: 99, hasMeta: true, version: binformat.VersionBase})

	var stems stemtable.Table
	var store specstore.Store
	err := Load(b.buf.Bytes(), &stems, &store, engine, nil)
	require.NoError(t, err)
	assert.Equal(t, -1, store.At(0).StemID)
}

func TestLoadRejectsFailedValidation(t *testing.T) {
	engine := &regexengine.Regexp2Engine{}
	b := newFullHeader(binformat.VersionBase, engine.Version(), engine.ArchString())
	b.stems("/etc")
	b.u32(1)
	b.spec(specFixture{ctx: "not_a_valid_context", regex: "/etc", mode: 0, stemID: -1, hasMeta: false, version: binformat.VersionBase})

	var stems stemtable.Table
	var store specstore.Store
	validate := func(raw string) (string, error) {
		return "", fmt.Errorf("rejected: %s", raw)
	}
	err := Load(b.buf.Bytes(), &stems, &store, engine, validate)
	assert.ErrorIs(t, err, selerrors.ErrValidate)
}

func TestLoadAppliesValidationRewrite(t *testing.T) {
	engine := &regexengine.Regexp2Engine{}
	b := newFullHeader(binformat.VersionBase, engine.Version(), engine.ArchString())
	b.stems("/etc")
	b.u32(1)
	b.spec(specFixture{ctx: "system_u:object_r:etc_t", regex: "/etc", mode: 0, stemID: -1, hasMeta: false, version: binformat.VersionBase})

	var stems stemtable.Table
	var store specstore.Store
	validate := func(raw string) (string, error) {
		return raw + ":s0", nil
	}
	err := Load(b.buf.Bytes(), &stems, &store, engine, validate)
	require.NoError(t, err)
	assert.Equal(t, "system_u:object_r:etc_t:s0", store.At(0).Label.Raw)
}

func TestLoadTruncatedFileIsFormatError(t *testing.T) {
	engine := &regexengine.Regexp2Engine{}
	b := &builder{}
	b.u32(binformat.Magic) // cut off right after magic

	var stems stemtable.Table
	var store specstore.Store
	err := Load(b.buf.Bytes(), &stems, &store, engine, nil)
	assert.ErrorIs(t, err, selerrors.ErrFormat)
}
