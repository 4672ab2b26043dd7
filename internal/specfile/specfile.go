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

// Package specfile resolves which on-disk candidate (text rule file vs its
// precompiled .bin sibling) to load for a given base path, and drives the
// newest-then-oldest retry policy of spec.md §4.3/§7.
package specfile

import (
	"fmt"
	"os"
	"sort"

	"github.com/holocm/go-selabel/internal/binformat"
	"github.com/holocm/go-selabel/internal/selerrors"
)

// Candidate is one stat'd file competing to be loaded for a given base path.
type Candidate struct {
	Path    string
	ModTime int64 // unix nanoseconds, for deterministic sorting
	IsBin   bool
}

// Candidates stats {base+suffix, base+suffix+".bin"} (suffix may be empty)
// and returns the ones that exist, oldest first, ties broken so that a
// later-declared candidate (i.e. .bin) sorts after its plain twin
// (spec.md §4.3 "on timestamp tie, later entries in the candidate list
// win").
func Candidates(base, suffix string) ([]Candidate, error) {
	plainPath := base + suffix
	binPath := plainPath + ".bin"

	var out []Candidate
	for i, path := range []string{plainPath, binPath} {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("%w: stat %s: %v", selerrors.ErrIO, path, err)
		}
		out = append(out, Candidate{
			Path:    path,
			ModTime: info.ModTime().UnixNano(),
			IsBin:   i == 1,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ModTime < out[j].ModTime
	})
	return out, nil
}

// Newest returns the candidate process_file's first pass should try, or
// false if none exist.
func Newest(cands []Candidate) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	return cands[len(cands)-1], true
}

// Oldest returns the candidate process_file's retry pass should try, or
// false if there is no other candidate to fall back to.
func Oldest(cands []Candidate, skip Candidate) (Candidate, bool) {
	for _, c := range cands {
		if c.Path != skip.Path {
			return c, true
		}
	}
	return Candidate{}, false
}

// Sniff reports whether path looks like a compiled binary rule file by
// peeking its leading bytes, independent of the ".bin" naming convention
// (a renamed or symlinked file is still detected correctly).
func Sniff(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("%w: open %s: %v", selerrors.ErrIO, path, err)
	}
	defer f.Close()

	var head [4]byte
	n, err := f.Read(head[:])
	if err != nil && n == 0 {
		return false, nil
	}
	return binformat.PeekMagic(head[:n]), nil
}

// LoadFunc loads one candidate; returning it lets callers plug in either
// the binary or text loader without specfile needing to import either.
type LoadFunc func(c Candidate) error

// Resolve implements process_file's two-pass policy (spec.md §4.3/§7):
// try the newest candidate; on any failure other than the candidate list
// being empty, retry the oldest other candidate. Both failing is fatal,
// reporting the newest attempt's error (the primary path the caller
// actually wanted).
func Resolve(base, suffix string, load LoadFunc) error {
	cands, err := Candidates(base, suffix)
	if err != nil {
		return err
	}
	newest, ok := Newest(cands)
	if !ok {
		return fmt.Errorf("%w: no candidate for %s%s", selerrors.ErrNotFound, base, suffix)
	}

	firstErr := load(newest)
	if firstErr == nil {
		return nil
	}

	oldest, ok := Oldest(cands, newest)
	if !ok {
		return firstErr
	}
	if err := load(oldest); err != nil {
		return firstErr
	}
	return nil
}
