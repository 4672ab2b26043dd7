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

// Package specstore holds the ordered array of pattern→label rules and the
// sorter that establishes lookup precedence between them.
package specstore

import (
	"sync"
	"sync/atomic"

	"github.com/holocm/go-selabel/internal/regexengine"
)

// File-type filter bits, matching S_IFMT semantics (spec.md §4.6 step 3).
const (
	ModeAny     uint32 = 0
	ModeFIFO    uint32 = 0010000
	ModeChar    uint32 = 0020000
	ModeDir     uint32 = 0040000
	ModeBlock   uint32 = 0060000
	ModeRegular uint32 = 0100000
	ModeSymlink uint32 = 0120000
	ModeSocket  uint32 = 0140000
	ModeMask    uint32 = 0170000
)

// Label is a (raw, translated) security-context pair. Only Raw is ever
// populated by a loader; Translated is filled in later by a caller-supplied
// translation step that is out of this module's scope.
type Label struct {
	Raw        string
	Translated string
}

// NoneContext is the sentinel raw context meaning "no label assigned"; a
// lookup that resolves to it is surfaced to callers as NotFound.
const NoneContext = "<<none>>"

// IsNone reports whether this label is the <<none>> sentinel.
func (l Label) IsNone() bool {
	return l.Raw == NoneContext
}

// Spec is a single pathname-pattern-to-label rule.
type Spec struct {
	// RegexStr is the source pattern string; bytes may be borrowed from a
	// mapped region (see FromMmapRegex).
	RegexStr []byte
	// FromMmapRegex indicates RegexStr aliases a memory-mapped region.
	FromMmapRegex bool
	// StemID indexes into a stemtable.Table, or -1 for "no literal prefix".
	StemID int
	// Mode is a file-type filter (one of the Mode* constants) or ModeAny.
	Mode uint32
	// Label carries the raw (and optionally translated) context string.
	Label Label
	// HasMetaChars is true when RegexStr contains regex metacharacters; a
	// Spec without metacharacters is "exact".
	HasMetaChars bool
	// PrefixLen is the length of the pattern's fixed literal prefix, used
	// by best-match ranking.
	PrefixLen int

	matches      atomic.Uint64
	compiledOnce sync.Once
	compiled     regexengine.Compiled
	compileErr   error
}

// Exact reports whether this spec is a literal pathname (no metacharacters).
func (s *Spec) Exact() bool { return !s.HasMetaChars }

// Matches returns the number of times this spec has produced a successful
// match since it was loaded.
func (s *Spec) Matches() uint64 { return s.matches.Load() }

// RecordMatch increments the diagnostic match counter. Safe to call
// concurrently with other readers, per spec.md §5's "relaxed counter"
// allowance.
func (s *Spec) RecordMatch() { s.matches.Add(1) }

// Compiled returns the spec's compiled regex if CompileWith or
// PresetCompiled has already run, and whether it has.
func (s *Spec) Compiled() (regexengine.Compiled, bool) {
	if s.compiled == nil && s.compileErr == nil {
		return nil, false
	}
	return s.compiled, true
}

// CompileWith lazily compiles RegexStr using engine, exactly once. All
// subsequent calls (including ones that raced the first) observe the same
// result, modelling the Uncompiled|Compiled|Failed slot of spec.md §9.
func (s *Spec) CompileWith(engine regexengine.Engine) (regexengine.Compiled, error) {
	s.compiledOnce.Do(func() {
		s.compiled, s.compileErr = engine.Compile(string(s.RegexStr))
	})
	return s.compiled, s.compileErr
}

// PresetCompiled seeds an already-compiled regex (e.g. adopted eagerly from
// a binary rule file whose arch fingerprint matched the host engine),
// short-circuiting any later CompileWith call. Calling it more than once
// has no effect after the first.
func (s *Spec) PresetCompiled(c regexengine.Compiled) {
	s.compiledOnce.Do(func() {
		s.compiled = c
	})
}
