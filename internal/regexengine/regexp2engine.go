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

package regexengine

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// engineVersion and engineArch are the ABI fingerprint this engine reports
// to the binary loader. A real deployment would derive these from the
// linked regexp2 release and target triple; fixed constants are sufficient
// here since both sides of every comparison in this module come from the
// same build.
const (
	engineVersion = "regexp2/dlclark-v1"
	engineArch    = "go-selabel/generic"
)

// compiledRegex is the Compiled handle produced by Regexp2Engine. It holds
// two compiled forms of the same pattern: full (anchored start and end, for
// Lookup) and prefix (anchored start only, for PartialMatch).
type compiledRegex struct {
	source string
	full   *regexp2.Regexp
	prefix *regexp2.Regexp // nil if the pattern could not be compiled in prefix form
}

func (c *compiledRegex) Source() string { return c.source }

// Regexp2Engine implements Engine atop github.com/dlclark/regexp2, a
// Perl-compatible backtracking engine. It stands in for the PCRE-class
// engine spec.md assumes: Go's stdlib regexp is RE2-only and cannot express
// every construct a file_contexts pattern may use (e.g. backreferences).
type Regexp2Engine struct {
	// MatchTimeout bounds how long a single match attempt may run, guarding
	// against catastrophic backtracking on adversarial patterns. Zero means
	// the package default (5s) is used.
	MatchTimeout time.Duration
}

func (e *Regexp2Engine) timeout() time.Duration {
	if e.MatchTimeout <= 0 {
		return 5 * time.Second
	}
	return e.MatchTimeout
}

// Version implements Engine.
func (e *Regexp2Engine) Version() string { return engineVersion }

// ArchString implements Engine.
func (e *Regexp2Engine) ArchString() string { return engineArch }

// Compile implements Engine. It eagerly compiles both the full-match and
// prefix-match forms of pattern; compile_regex's laziness (spec.md §6.2) is
// the caller's responsibility (internal/specstore defers calling Compile
// until first use).
func (e *Regexp2Engine) Compile(pattern string) (Compiled, error) {
	full, err := regexp2.Compile(`\A(?:`+pattern+`)\z`, regexp2.RE2)
	if err != nil {
		full, err = regexp2.Compile(`\A(?:`+pattern+`)\z`, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("regexengine: cannot compile %q: %w", pattern, err)
		}
	}
	full.MatchTimeout = e.timeout()

	// the prefix form is best-effort: some patterns compile fine anchored
	// at both ends but not at the start alone (rare); a partial match
	// against those always reports NoMatch, it never fails the whole load.
	var prefix *regexp2.Regexp
	if p, perr := regexp2.Compile(`\A(?:`+pattern+`)`, regexp2.None); perr == nil {
		p.MatchTimeout = e.timeout()
		prefix = p
	}

	return &compiledRegex{source: pattern, full: full, prefix: prefix}, nil
}

// LoadMmap implements Engine. regexp2 has no binary serialization format
// for compiled automata, so adoption is never possible; the blob's bytes
// are simply not interpreted (the caller already consumed exactly the
// right number from the mapped region via its own length prefix).
func (e *Regexp2Engine) LoadMmap(blob []byte, archOK bool) (Compiled, error) {
	return nil, ErrUnsupportedBlob
}

// Match implements Engine.
func (e *Regexp2Engine) Match(c Compiled, text []byte, partial bool) MatchResult {
	cr, ok := c.(*compiledRegex)
	if !ok || cr == nil {
		return MatchError
	}

	if partial {
		if cr.prefix == nil {
			return NoMatch
		}
		m, err := cr.prefix.FindStringMatch(string(text))
		if err != nil {
			return MatchError
		}
		if m == nil {
			return NoMatch
		}
		return PartialMatch
	}

	m, err := cr.full.FindStringMatch(string(text))
	if err != nil {
		return MatchError
	}
	if m == nil {
		return NoMatch
	}
	return FullMatch
}

// Cmp implements Engine. Two compiled regexes are Equal iff they were
// compiled from byte-identical source patterns; regexp2 exposes no
// structural automaton comparison, so source equality is the closest
// faithful proxy (the original C engine falls back to regex_str comparison
// under the same circumstances per spec.md §4.7 when a compiled-regex
// comparison isn't available).
func (e *Regexp2Engine) Cmp(a, b Compiled) CmpResult {
	ca, aok := a.(*compiledRegex)
	cb, bok := b.(*compiledRegex)
	if !aok || !bok || ca == nil || cb == nil {
		return Incomparable
	}
	if ca.source == cb.source {
		return Equal
	}
	return Incomparable
}
