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

// Package stemtable holds the deduplicated table of leading path segments
// ("stems") that specs narrow their candidacy against during lookup.
package stemtable

import "bytes"

// Stem is a single leading path segment, e.g. "/usr" or "/var". Buf may be
// borrowed from a memory-mapped region (FromMmap true) or independently
// owned (FromMmap false, e.g. allocated while parsing a text rule file).
type Stem struct {
	Buf      []byte
	FromMmap bool
}

// Table is an append-only, deduplicated collection of Stems. Within one
// Table, stems are unique by (length, bytes); the zero value is ready to use.
type Table struct {
	stems []Stem
}

// Len returns the number of distinct stems held by the table.
func (t *Table) Len() int {
	return len(t.stems)
}

// Get returns the stem at the given id, or false if id is out of range.
func (t *Table) Get(id int) (Stem, bool) {
	if id < 0 || id >= len(t.stems) {
		return Stem{}, false
	}
	return t.stems[id], true
}

// Find returns the id of an existing stem with identical bytes, or -1 if
// none exists yet.
func (t *Table) Find(buf []byte) int {
	for i := range t.stems {
		if bytes.Equal(t.stems[i].Buf, buf) {
			return i
		}
	}
	return -1
}

// Intern returns the id of a stem with the given bytes, reusing an existing
// entry when one already matches, or appending a new owned entry otherwise.
// The returned id is stable for the lifetime of the Table.
func (t *Table) Intern(buf []byte) int {
	if id := t.Find(buf); id != -1 {
		return id
	}
	owned := make([]byte, len(buf))
	copy(owned, buf)
	t.stems = append(t.stems, Stem{Buf: owned, FromMmap: false})
	return len(t.stems) - 1
}

// InternBorrowed is like Intern, but when a new entry must be created, its
// bytes are taken as a borrowed sub-slice of a mapped region instead of
// being copied. The caller is responsible for keeping the backing region
// mapped for as long as the Table (and any Spec referencing this stem) is
// alive.
func (t *Table) InternBorrowed(buf []byte) int {
	if id := t.Find(buf); id != -1 {
		return id
	}
	t.stems = append(t.stems, Stem{Buf: buf, FromMmap: true})
	return len(t.stems) - 1
}
