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

// Package comparator implements structural equality/ordering between two
// loaded spec stores (spec.md §4.7), exploiting the sorter's invariant that
// exact specs trail regex specs in each store.
package comparator

import (
	"bytes"
	"fmt"

	"github.com/holocm/go-selabel/internal/regexengine"
	"github.com/holocm/go-selabel/internal/specstore"
	"github.com/holocm/go-selabel/internal/stemtable"
)

// Result is the three-way (four including Incomparable) outcome of Compare.
type Result int

const (
	Equal Result = iota
	Subset
	Superset
	Incomparable
)

func (r Result) String() string {
	switch r {
	case Equal:
		return "Equal"
	case Subset:
		return "Subset"
	case Superset:
		return "Superset"
	default:
		return "Incomparable"
	}
}

// Side bundles the store/stem-table/engine a comparator needs for one of
// the two handles being compared; a Spec's stem id is only meaningful
// relative to its own Table.
type Side struct {
	Store  *specstore.Store
	Stems  *stemtable.Table
	Engine regexengine.Engine
}

func stemBytes(stems *stemtable.Table, id int) []byte {
	if id < 0 {
		return nil
	}
	stem, ok := stems.Get(id)
	if !ok {
		return nil
	}
	return stem.Buf
}

// Compare walks a.Store and b.Store in parallel index cursors. When one
// side currently points at an exact spec while the other points at a
// regex spec, the side at the regex spec is skipped forward and marked as
// having extra entries (spec.md §4.5's "exact specs trail"
// invariant lets this be a clean merge instead of needing to search). Once
// both cursors point at specs of the same kind, the pair must agree on
// every field below or the whole comparison is Incomparable.
func Compare(a, b Side) Result {
	i, j := 0, 0
	skippedA, skippedB := false, false

	for i < a.Store.Len() && j < b.Store.Len() {
		specA := a.Store.At(i)
		specB := b.Store.At(j)

		if specA.Exact() && !specB.Exact() {
			j++
			skippedB = true
			continue
		}
		if specB.Exact() && !specA.Exact() {
			i++
			skippedA = true
			continue
		}

		if !fieldsAgree(specA, specB, a, b) {
			return Incomparable
		}
		i++
		j++
	}

	if i < a.Store.Len() {
		skippedA = true
	}
	if j < b.Store.Len() {
		skippedB = true
	}

	switch {
	case skippedA && skippedB:
		return Incomparable
	case skippedA:
		return Superset
	case skippedB:
		return Subset
	default:
		return Equal
	}
}

func fieldsAgree(specA, specB *specstore.Spec, a, b Side) bool {
	if specA.Mode != specB.Mode {
		return false
	}
	if (specA.StemID == -1) != (specB.StemID == -1) {
		return false
	}
	if specA.StemID != -1 {
		if !bytes.Equal(stemBytes(a.Stems, specA.StemID), stemBytes(b.Stems, specB.StemID)) {
			return false
		}
	}
	if specA.Label.Raw != specB.Label.Raw {
		return false
	}

	compiledA, okA := specA.Compiled()
	compiledB, okB := specB.Compiled()
	if okA && okB {
		return a.Engine.Cmp(compiledA, compiledB) == regexengine.Equal
	}
	return bytes.Equal(specA.RegexStr, specB.RegexStr)
}

// Explain is like Compare but also returns a diagnostic naming the first
// disagreeing field, for callers (e.g. a CLI `cmp` subcommand) that want a
// human-readable reason rather than a bare verdict.
func Explain(a, b Side) (Result, string) {
	i, j := 0, 0
	for i < a.Store.Len() && j < b.Store.Len() {
		specA := a.Store.At(i)
		specB := b.Store.At(j)

		if specA.Exact() && !specB.Exact() {
			j++
			continue
		}
		if specB.Exact() && !specA.Exact() {
			i++
			continue
		}

		if reason := disagreement(specA, specB, a, b); reason != "" {
			return Incomparable, fmt.Sprintf("spec %d vs %d: %s", i, j, reason)
		}
		i++
		j++
	}
	return Compare(a, b), ""
}

func disagreement(specA, specB *specstore.Spec, a, b Side) string {
	if specA.Mode != specB.Mode {
		return "mode"
	}
	if (specA.StemID == -1) != (specB.StemID == -1) {
		return "stem presence"
	}
	if specA.StemID != -1 && !bytes.Equal(stemBytes(a.Stems, specA.StemID), stemBytes(b.Stems, specB.StemID)) {
		return "stem bytes"
	}
	if specA.Label.Raw != specB.Label.Raw {
		return "raw context"
	}
	compiledA, okA := specA.Compiled()
	compiledB, okB := specB.Compiled()
	if okA && okB {
		if a.Engine.Cmp(compiledA, compiledB) != regexengine.Equal {
			return "compiled regex"
		}
		return ""
	}
	if !bytes.Equal(specA.RegexStr, specB.RegexStr) {
		return "regex_str"
	}
	return ""
}
