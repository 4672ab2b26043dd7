/*******************************************************************************
*
* Copyright 2016 Stefan Majewsky <majewsky@gmx.net>
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

// Package binloader parses the compiled binary rule file format of
// spec.md §6.1, validating its magic, version and regex-engine ABI
// fingerprint, and appending the specs it finds to a specstore.Store.
package binloader

import (
	"bytes"
	"fmt"

	"github.com/holocm/go-selabel/internal/regexengine"
	"github.com/holocm/go-selabel/internal/selerrors"
	"github.com/holocm/go-selabel/internal/specstore"
	"github.com/holocm/go-selabel/internal/stemtable"

	"github.com/holocm/go-selabel/internal/binformat"
)

// Validate checks (and may rewrite) a raw context string loaded from a
// specfile. A nil Validate performs no checking.
type Validate func(rawContext string) (string, error)

// Load parses data (typically a memory-mapped file's full contents) and
// appends every spec it finds to store, interning stems into stems. Bytes
// for stem buffers and regex source strings are borrowed sub-slices of
// data (spec.md §4.1 "stem bytes... are borrowed"); context strings are
// always copied, since validation may rewrite them.
//
// engine supplies the host regex-engine ABI fingerprint (Version,
// ArchString) used to validate the file and to decide whether serialized
// compiled-regex blobs can be adopted eagerly. validate, if non-nil, is
// consulted for every context string before its spec is appended.
func Load(data []byte, stems *stemtable.Table, store *specstore.Store, engine regexengine.Engine, validate Validate) error {
	c := &cursor{data: data}

	magic, err := c.u32()
	if err != nil {
		return fmt.Errorf("%w: truncated before magic: %v", selerrors.ErrFormat, err)
	}
	if magic != binformat.Magic {
		return fmt.Errorf("%w: bad magic 0x%08x", selerrors.ErrFormat, magic)
	}

	version, err := c.u32()
	if err != nil {
		return fmt.Errorf("%w: truncated before version: %v", selerrors.ErrFormat, err)
	}
	if version == 0 || version > binformat.MaxKnownVersion {
		return fmt.Errorf("%w: unsupported version %d (max known %d)", selerrors.ErrFormat, version, binformat.MaxKnownVersion)
	}

	if version >= binformat.VersionPCRE {
		regVerLen, err := c.u32()
		if err != nil {
			return fmt.Errorf("%w: truncated before regex version length: %v", selerrors.ErrFormat, err)
		}
		regVer, err := c.take(int(regVerLen))
		if err != nil {
			return fmt.Errorf("%w: regex version string overruns region: %v", selerrors.ErrFormat, err)
		}
		if !bytes.Equal(regVer, []byte(engine.Version())) {
			return fmt.Errorf("%w: file was compiled against %q, host engine is %q", selerrors.ErrVersionMismatch, regVer, engine.Version())
		}
	}

	archOK := false
	if version >= binformat.VersionRegexArch {
		archLen, err := c.u32()
		if err != nil {
			return fmt.Errorf("%w: truncated before arch length: %v", selerrors.ErrFormat, err)
		}
		// A length mismatch here is explicitly non-fatal (spec.md §4.1):
		// we still must read exactly archLen bytes to stay in sync with
		// the rest of the file, but an overrun while doing so (Open
		// Question 1) is a genuine FormatError, not a silent skip.
		arch, err := c.take(int(archLen))
		if err != nil {
			return fmt.Errorf("%w: arch string overruns region: %v", selerrors.ErrFormat, err)
		}
		archOK = bytes.Equal(arch, []byte(engine.ArchString()))
	}

	stemCount, err := c.u32()
	if err != nil {
		return fmt.Errorf("%w: truncated before stem count: %v", selerrors.ErrFormat, err)
	}
	if stemCount == 0 {
		return fmt.Errorf("%w: stem count must be > 0", selerrors.ErrFormat)
	}

	fileToHandleStem := make([]int, stemCount)
	for i := uint32(0); i < stemCount; i++ {
		stemLen, err := c.u32()
		if err != nil {
			return fmt.Errorf("%w: truncated before stem %d length: %v", selerrors.ErrFormat, i, err)
		}
		if stemLen == 0 || stemLen == ^uint32(0) {
			return fmt.Errorf("%w: stem %d has invalid length %d", selerrors.ErrFormat, i, stemLen)
		}
		raw, err := c.take(int(stemLen) + 1)
		if err != nil {
			return fmt.Errorf("%w: stem %d overruns region: %v", selerrors.ErrFormat, i, err)
		}
		if raw[len(raw)-1] != 0 {
			return fmt.Errorf("%w: stem %d missing trailing NUL", selerrors.ErrFormat, i)
		}
		fileToHandleStem[i] = stems.InternBorrowed(raw[:stemLen])
	}

	specCount, err := c.u32()
	if err != nil {
		return fmt.Errorf("%w: truncated before spec count: %v", selerrors.ErrFormat, err)
	}
	if specCount == 0 {
		return fmt.Errorf("%w: spec count must be > 0", selerrors.ErrFormat)
	}

	for i := uint32(0); i < specCount; i++ {
		spec, err := readSpec(c, version, fileToHandleStem, engine, archOK, validate)
		if err != nil {
			return fmt.Errorf("spec %d: %w", i, err)
		}
		store.Append(spec)
	}

	return nil
}

func readSpec(c *cursor, version uint32, fileToHandleStem []int, engine regexengine.Engine, archOK bool, validate Validate) (*specstore.Spec, error) {
	ctxLen, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated before context length: %v", selerrors.ErrFormat, err)
	}
	if ctxLen == 0 {
		return nil, fmt.Errorf("%w: context length must be > 0", selerrors.ErrFormat)
	}
	ctxBytes, err := c.take(int(ctxLen))
	if err != nil {
		return nil, fmt.Errorf("%w: context overruns region: %v", selerrors.ErrFormat, err)
	}
	if ctxBytes[len(ctxBytes)-1] != 0 {
		return nil, fmt.Errorf("%w: context missing trailing NUL", selerrors.ErrFormat)
	}
	// context strings are copied: validation may rewrite them.
	rawContext := string(ctxBytes[:len(ctxBytes)-1])
	if validate != nil {
		rewritten, err := validate(rawContext)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", selerrors.ErrValidate, err)
		}
		rawContext = rewritten
	}

	regexLen, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated before regex length: %v", selerrors.ErrFormat, err)
	}
	if regexLen == 0 {
		return nil, fmt.Errorf("%w: regex length must be > 0", selerrors.ErrFormat)
	}
	regexBytes, err := c.take(int(regexLen))
	if err != nil {
		return nil, fmt.Errorf("%w: regex overruns region: %v", selerrors.ErrFormat, err)
	}
	if regexBytes[len(regexBytes)-1] != 0 {
		return nil, fmt.Errorf("%w: regex missing trailing NUL", selerrors.ErrFormat)
	}
	// regex source bytes are borrowed from the mapped region.
	regexStr := regexBytes[:len(regexBytes)-1]

	mode, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated before mode: %v", selerrors.ErrFormat, err)
	}

	fileStemID, err := c.i32()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated before stem id: %v", selerrors.ErrFormat, err)
	}
	stemID := -1
	if fileStemID >= 0 && int(fileStemID) < len(fileToHandleStem) {
		stemID = fileToHandleStem[fileStemID]
	}
	// file-local ids outside the declared range degrade to -1 rather than
	// aborting the load (spec.md §4.1).

	hasMetaWord, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated before has_meta: %v", selerrors.ErrFormat, err)
	}

	prefixLen := 0
	if version >= binformat.VersionPrefixLen {
		v, err := c.u32()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated before prefix_len: %v", selerrors.ErrFormat, err)
		}
		prefixLen = int(v)
	}

	blobLen, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated before serialized regex length: %v", selerrors.ErrFormat, err)
	}
	blob, err := c.take(int(blobLen))
	if err != nil {
		return nil, fmt.Errorf("%w: serialized regex overruns region: %v", selerrors.ErrFormat, err)
	}

	spec := &specstore.Spec{
		RegexStr:      regexStr,
		FromMmapRegex: true,
		StemID:        stemID,
		Mode:          mode,
		Label:         specstore.Label{Raw: rawContext},
		HasMetaChars:  hasMetaWord != 0,
		PrefixLen:     prefixLen,
	}

	if len(blob) > 0 {
		// Adoption failure (including ErrUnsupportedBlob) is never fatal:
		// the spec simply stays uncompiled and is compiled lazily from
		// regexStr on first use, per spec.md §4.1.
		if compiled, err := engine.LoadMmap(blob, archOK); err == nil && compiled != nil {
			spec.PresetCompiled(compiled)
		}
	}

	return spec, nil
}
