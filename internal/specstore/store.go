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

package specstore

import (
	"fmt"
	"sort"
)

// Store is an append-only array of rules. Go's own slice append already
// grows geometrically, so no manual capacity bookkeeping is needed to honor
// spec.md §3 invariant 4.
type Store struct {
	specs []*Spec
}

// Append adds a new spec to the end of the store, preserving load order.
func (s *Store) Append(spec *Spec) {
	s.specs = append(s.specs, spec)
}

// Len returns the number of specs currently in the store.
func (s *Store) Len() int { return len(s.specs) }

// At returns the spec at index i.
func (s *Store) At(i int) *Spec { return s.specs[i] }

// All returns the underlying slice. Callers must not retain it past a
// subsequent Append (which may reallocate).
func (s *Store) All() []*Spec { return s.specs }

// Sort performs the stable partition required by spec.md §4.5 and
// invariant 3 of §3: specs with metacharacters are moved before specs
// without (exact specs trail), preserving relative order within each
// group. Consequence: a reverse scan (spec.md §4.6) sees exact specs
// first, so literal matches win over older regex matches.
func (s *Store) Sort() {
	rank := func(spec *Spec) int {
		if spec.HasMetaChars {
			return 0
		}
		return 1
	}
	sort.SliceStable(s.specs, func(i, j int) bool {
		return rank(s.specs[i]) < rank(s.specs[j])
	})
}

// DuplicateReport describes one redundant-or-conflicting pair found by
// NoDups.
type DuplicateReport struct {
	IndexA, IndexB int
	Conflicting    bool // true if the two specs disagree on raw context
}

func (d DuplicateReport) Error() string {
	if d.Conflicting {
		return fmt.Sprintf("conflicting specs for identical pattern at positions %d and %d", d.IndexA, d.IndexB)
	}
	return fmt.Sprintf("redundant spec for identical pattern at positions %d and %d", d.IndexA, d.IndexB)
}

// modeCompatible reports whether two mode filters could both match the same
// key: true when either is the wildcard (ModeAny) or when they're equal.
func modeCompatible(a, b uint32) bool {
	return a == ModeAny || b == ModeAny || a == b
}

// NoDups implements nodups_specs (spec.md §4.4): it reports one
// DuplicateReport for every pair of specs sharing an identical RegexStr and
// a compatible Mode, distinguishing "same context" (redundant) from
// "different contexts" (conflicting, Conflicting=true).
func (s *Store) NoDups() []DuplicateReport {
	var reports []DuplicateReport
	for i := 0; i < len(s.specs); i++ {
		for j := i + 1; j < len(s.specs); j++ {
			a, b := s.specs[i], s.specs[j]
			if string(a.RegexStr) != string(b.RegexStr) {
				continue
			}
			if !modeCompatible(a.Mode, b.Mode) {
				continue
			}
			reports = append(reports, DuplicateReport{
				IndexA:      i,
				IndexB:      j,
				Conflicting: a.Label.Raw != b.Label.Raw,
			})
		}
	}
	return reports
}
