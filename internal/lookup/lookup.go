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

// Package lookup implements the stem-narrowed reverse scan that resolves a
// filesystem path to a label (spec.md §4.6), plus the best-match/alias
// ranking built on top of it.
package lookup

import (
	"strings"

	"github.com/holocm/go-selabel/internal/regexengine"
	"github.com/holocm/go-selabel/internal/selerrors"
	"github.com/holocm/go-selabel/internal/specstore"
	"github.com/holocm/go-selabel/internal/stemtable"
)

// Canonicalize collapses runs of consecutive '/' to a single '/', leaving
// the rest of key untouched (spec.md §4.6 step 1).
func Canonicalize(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	prevSlash := false
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// splitStem computes the key's file stem index: the substring from byte 1
// up to (excluding) the next '/'. If it matches a Stem by exact bytes, its
// id is returned along with the remainder of key with the stem prefix
// consumed; otherwise (-1, key) is returned unchanged (spec.md §4.6 step 2).
func splitStem(key string, stems *stemtable.Table) (int, string) {
	if len(key) < 2 {
		return -1, key
	}
	rest := key[1:]
	end := strings.IndexByte(rest, '/')
	var segment string
	if end == -1 {
		segment = rest
	} else {
		segment = rest[:end]
	}
	if segment == "" {
		return -1, key
	}

	candidate := key[:1+len(segment)]
	id := stems.Find([]byte(candidate))
	if id == -1 {
		return -1, key
	}
	return id, key[len(candidate):]
}

// hit is an internal match outcome carrying enough detail for best_match's
// ranking rules.
type hit struct {
	spec *specstore.Spec
}

// lookupCommon runs spec.md §4.6 steps 1-4 for a single key (canonicalize,
// split the stem, mask the mode, reverse stem-narrowed scan), returning the
// winning spec (if any), or ErrInternal if the engine fails to compile or
// match. The <<none>> check of step 5 is left to the callers.
func lookupCommon(key string, mode uint32, stems *stemtable.Table, store *specstore.Store, engine regexengine.Engine, partial bool) (*hit, error) {
	key = Canonicalize(key)
	keyStemID, buf := splitStem(key, stems)
	mode &= specstore.ModeMask

	for i := store.Len() - 1; i >= 0; i-- {
		spec := store.At(i)

		if spec.StemID != -1 && spec.StemID != keyStemID {
			continue
		}
		if mode != 0 && spec.Mode != 0 && spec.Mode != mode {
			continue
		}

		compiled, err := spec.CompileWith(engine)
		if err != nil {
			return nil, selerrors.ErrInternal
		}

		subject := key
		if spec.StemID != -1 {
			subject = buf
		}

		result := engine.Match(compiled, []byte(subject), partial)
		switch result {
		case regexengine.MatchError:
			return nil, selerrors.ErrInternal
		case regexengine.FullMatch:
			spec.RecordMatch()
			return &hit{spec: spec}, nil
		case regexengine.PartialMatch:
			if partial {
				spec.RecordMatch()
				return &hit{spec: spec}, nil
			}
		}
	}
	return nil, nil
}

// Lookup resolves key to a label, applying mode as a file-type filter.
// A <<none>> match, or no match at all, is reported as selerrors.ErrNotFound.
func Lookup(key string, mode uint32, stems *stemtable.Table, store *specstore.Store, engine regexengine.Engine) (specstore.Label, error) {
	h, err := lookupCommon(key, mode, stems, store, engine, false)
	if err != nil {
		return specstore.Label{}, err
	}
	if h == nil || h.spec.Label.IsNone() {
		return specstore.Label{}, selerrors.ErrNotFound
	}
	return h.spec.Label, nil
}

// PartialMatch reports whether key is a valid prefix of something some
// spec could match.
func PartialMatch(key string, stems *stemtable.Table, store *specstore.Store, engine regexengine.Engine) (bool, error) {
	h, err := lookupCommon(key, 0, stems, store, engine, true)
	if err != nil {
		return false, err
	}
	return h != nil, nil
}

// BestMatch runs lookupCommon on key and each of aliases, and picks the
// best result per spec.md §4.6 "Best-match semantics": an exact spec from
// any candidate wins outright (the key is probed first, so it wins
// exact-vs-exact ties); otherwise the greatest PrefixLen wins, the key
// winning prefix-length ties because it is assigned first.
func BestMatch(key string, aliases []string, mode uint32, stems *stemtable.Table, store *specstore.Store, engine regexengine.Engine) (specstore.Label, error) {
	candidates := make([]string, 0, len(aliases)+1)
	candidates = append(candidates, key)
	candidates = append(candidates, aliases...)

	var best *hit
	for _, cand := range candidates {
		h, err := lookupCommon(cand, mode, stems, store, engine, false)
		if err != nil {
			return specstore.Label{}, err
		}
		if h == nil {
			continue
		}
		if h.spec.Exact() {
			best = h
			break
		}
		if best == nil || h.spec.PrefixLen > best.spec.PrefixLen {
			best = h
		}
	}

	if best == nil || best.spec.Label.IsNone() {
		return specstore.Label{}, selerrors.ErrNotFound
	}
	return best.spec.Label, nil
}
