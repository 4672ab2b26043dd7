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

// Package regexengine is the external regex-engine collaborator described
// in spec.md §6.2. The core never imports a regex library directly; it
// only depends on this package's Engine interface, so the ABI fingerprint
// checks in internal/binloader stay meaningful regardless of backend.
package regexengine

import "errors"

// MatchResult mirrors the four-way outcome of the original regex_match
// collaborator.
type MatchResult int

const (
	// NoMatch means the pattern did not match the subject at all.
	NoMatch MatchResult = iota
	// FullMatch means the pattern matched the subject in full-match mode.
	FullMatch
	// PartialMatch means the pattern matched in partial-match mode (the
	// subject is a valid prefix of something the pattern could match).
	PartialMatch
	// MatchError means the engine reported an unexpected internal error.
	MatchError
)

// CmpResult mirrors regex_cmp's two-way outcome.
type CmpResult int

const (
	// Equal means the two compiled regexes are structurally identical.
	Equal CmpResult = iota
	// Incomparable means the two compiled regexes differ, or comparison
	// could not be performed (e.g. either pattern is still uncompiled).
	Incomparable
)

// ErrUnsupportedBlob is returned by LoadMmap when the engine cannot
// deserialize a previously-serialized compiled regex, even though the
// region cursor was still advanced past it. Callers must treat this as a
// normal "recompile lazily from source" outcome, not a fatal error.
var ErrUnsupportedBlob = errors.New("regexengine: serialized regex blob not supported, will recompile from source")

// Compiled is an opaque compiled regex handle.
type Compiled interface {
	// Source returns the pattern string this handle was compiled from.
	Source() string
}

// Engine is the collaborator contract of spec.md §6.2: version/arch
// identification for the binary-loader ABI check, lazy compilation, and
// matching.
type Engine interface {
	// Version identifies the engine's release, compared byte-for-byte
	// against a compiled rule file's recorded regex-library version.
	Version() string

	// ArchString identifies the engine's ABI/architecture, compared against
	// a compiled rule file's recorded arch string to decide whether
	// serialized compiled-regex blobs can be adopted.
	ArchString() string

	// Compile performs an idempotent compile of the given pattern.
	Compile(pattern string) (Compiled, error)

	// LoadMmap attempts to deserialize a previously-serialized compiled
	// regex from blob. The caller (internal/binloader) has already framed
	// blob to its exact on-disk length, so LoadMmap never needs to report
	// back a consumed byte count. When archOK is false, or the engine
	// cannot adopt serialized blobs at all, LoadMmap returns
	// ErrUnsupportedBlob alongside a nil Compiled — this is not fatal, the
	// spec will simply be recompiled lazily from its source string.
	LoadMmap(blob []byte, archOK bool) (Compiled, error)

	// Match matches text against a compiled pattern. When partial is true,
	// the engine runs in partial-match mode.
	Match(c Compiled, text []byte, partial bool) MatchResult

	// Cmp structurally compares two compiled regexes.
	Cmp(a, b Compiled) CmpResult
}
