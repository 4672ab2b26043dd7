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

// Package selabel is the public file-context labeling backend: it loads a
// rule set built from compiled binary and/or text specfiles and resolves
// filesystem paths to security labels.
package selabel

import (
	"bytes"
	"fmt"
	"os"

	"github.com/holocm/go-selabel/internal/binformat"
	"github.com/holocm/go-selabel/internal/binloader"
	"github.com/holocm/go-selabel/internal/comparator"
	"github.com/holocm/go-selabel/internal/digest"
	"github.com/holocm/go-selabel/internal/lookup"
	"github.com/holocm/go-selabel/internal/mmappool"
	"github.com/holocm/go-selabel/internal/regexengine"
	"github.com/holocm/go-selabel/internal/specfile"
	"github.com/holocm/go-selabel/internal/specstore"
	"github.com/holocm/go-selabel/internal/stemtable"
	"github.com/holocm/go-selabel/internal/subs"
	"github.com/holocm/go-selabel/internal/textloader"
)

// CmpResult is the outcome of comparing two handles.
type CmpResult = comparator.Result

const (
	CmpEqual       = comparator.Equal
	CmpSubset      = comparator.Subset
	CmpSuperset    = comparator.Superset
	CmpIncomparable = comparator.Incomparable
)

// Handle is a loaded, immutable (for lookup purposes) rule set. Construct
// one with Init and release its resources with Close.
type Handle struct {
	env    Environment
	engine regexengine.Engine
	stems  stemtable.Table
	store  specstore.Store
	pool   mmappool.Pool
	subst  subs.Table
	dig    digest.Builder
	closed bool
}

// Init builds a Handle from env's options, following spec.md §4.4:
// load primary specfiles (and their substitution overlays), then unless
// BaseOnly, attempt ".homedirs"/".local" overlays on the first path, then
// sort the store. Both the newest and oldest candidate failing for a
// required path is fatal; a missing overlay is not.
func Init(env Environment) (*Handle, error) {
	h := &Handle{env: env, engine: &regexengine.Regexp2Engine{}}

	paths := env.Paths
	if len(paths) == 0 {
		paths = []string{DefaultSpecfilePath}
	}

	for i, path := range paths {
		if err := h.loadSubstitutionOverlay(path + ".subs_dist"); err != nil {
			h.pool.CloseAll()
			return nil, err
		}
		if err := h.loadSubstitutionOverlay(path + ".subs"); err != nil {
			h.pool.CloseAll()
			return nil, err
		}

		if err := h.loadPrimary(path); err != nil {
			h.pool.CloseAll()
			return nil, err
		}

		if i == 0 && !env.BaseOnly {
			for _, suffix := range []string{"homedirs", "local"} {
				if err := h.loadOverlay(path, suffix); err != nil {
					h.pool.CloseAll()
					return nil, err
				}
			}
		}
	}

	if env.Subset != "" {
		h.applySubsetFilter(env.Subset)
	}

	if env.Validating {
		if err := h.checkNoDups(); err != nil {
			h.pool.CloseAll()
			return nil, err
		}
	}

	h.store.Sort()
	return h, nil
}

// loadSubstitutionOverlay loads a legacy ".subs"/".subs_dist" file if it
// exists; ENOENT is swallowed per spec.md §7.
func (h *Handle) loadSubstitutionOverlay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	defer f.Close()
	return subs.Load(f, &h.subst)
}

// loadPrimary drives the newest-then-oldest retry policy of spec.md §4.3
// for one base path.
func (h *Handle) loadPrimary(path string) error {
	return specfile.Resolve(path, "", h.loadCandidate)
}

// loadOverlay is like loadPrimary but swallows a missing candidate list
// entirely (spec.md §7: "ENOENT on overlays... is swallowed").
func (h *Handle) loadOverlay(path, suffix string) error {
	cands, err := specfile.Candidates(path, "."+suffix)
	if err != nil {
		return err
	}
	if len(cands) == 0 {
		h.env.logger().Debug("no overlay found", "path", path, "suffix", suffix)
		return nil
	}
	return specfile.Resolve(path, "."+suffix, h.loadCandidate)
}

// loadCandidate maps c.Path, sniffs its format, and parses it into h's
// stem table and spec store, folding its bytes into the running digest.
func (h *Handle) loadCandidate(c specfile.Candidate) error {
	region, err := h.pool.Map(c.Path)
	if err != nil {
		return err
	}
	h.dig.AddSpecfile(c.Path, region.Data)

	validate := h.validate()
	if binformat.PeekMagic(region.Data) {
		return binloader.Load(region.Data, &h.stems, &h.store, h.engine, binloader.Validate(validate))
	}
	return textloader.Load(bytes.NewReader(region.Data), &h.store, textloader.Validate(validate))
}

// validate adapts env.Validate (selabel_validate, spec.md §6.2) to the
// (string, error) shape the loaders expect: a nil ValidateFunc means no
// checking, a non-nil one is consulted for every raw context and a failure
// surfaces as ErrValidate.
func (h *Handle) validate() func(rawContext string) (string, error) {
	if h.env.Validate == nil {
		return nil
	}
	return func(rawContext string) (string, error) {
		if err := h.env.Validate(rawContext); err != nil {
			return "", err
		}
		return rawContext, nil
	}
}

// applySubsetFilter keeps only specs whose pattern starts with prefix.
func (h *Handle) applySubsetFilter(prefix string) {
	var kept specstore.Store
	for _, spec := range h.store.All() {
		if bytes.HasPrefix(spec.RegexStr, []byte(prefix)) {
			kept.Append(spec)
		}
	}
	h.store = kept
}

// checkNoDups implements nodups_specs (spec.md §4.4): it reports every
// redundant/conflicting pair via the handle's logger, and returns
// ErrDuplicateSpec wrapped in an ErrorCollector-derived message if any pair
// was found, whether redundant (same context) or conflicting.
func (h *Handle) checkNoDups() error {
	reports := h.store.NoDups()
	if len(reports) == 0 {
		return nil
	}

	var ec ErrorCollector
	for _, r := range reports {
		h.env.logger().Warn("duplicate spec", "conflicting", r.Conflicting, "index_a", r.IndexA, "index_b", r.IndexB)
		ec.Add(r)
	}
	if ec.Any() {
		return fmt.Errorf("%w: %d duplicate spec pair(s)", ErrDuplicateSpec, len(ec.Errors))
	}
	return nil
}

// Lookup resolves key to a label, honoring mode as a file-type filter.
func (h *Handle) Lookup(key string, mode uint32) (Label, error) {
	key = h.subst.Apply(key)
	return lookup.Lookup(key, mode, &h.stems, &h.store, h.engine)
}

// PartialMatch reports whether key is a valid prefix of some spec pattern.
func (h *Handle) PartialMatch(key string) (bool, error) {
	key = h.subst.Apply(key)
	return lookup.PartialMatch(key, &h.stems, &h.store, h.engine)
}

// BestMatch resolves key (and its aliases) to the highest-ranked label per
// spec.md §4.6's best-match semantics.
func (h *Handle) BestMatch(key string, aliases []string, mode uint32) (Label, error) {
	key = h.subst.Apply(key)
	substAliases := make([]string, len(aliases))
	for i, a := range aliases {
		substAliases[i] = h.subst.Apply(a)
	}
	return lookup.BestMatch(key, substAliases, mode, &h.stems, &h.store, h.engine)
}

// Cmp structurally compares h against other (spec.md §4.7).
func (h *Handle) Cmp(other *Handle) CmpResult {
	return comparator.Compare(
		comparator.Side{Store: &h.store, Stems: &h.stems, Engine: h.engine},
		comparator.Side{Store: &other.store, Stems: &other.stems, Engine: other.engine},
	)
}

// Stats emits a warning through h's logger for every spec with zero
// matches since load (spec.md §6.3 "stats").
func (h *Handle) Stats() {
	for i, spec := range h.store.All() {
		if spec.Matches() == 0 {
			h.env.logger().Warn("unused spec", "index", i, "pattern", string(spec.RegexStr), "context", spec.Label.Raw)
		}
	}
}

// Digest returns the content digest over every specfile loaded so far.
func (h *Handle) Digest() string {
	return h.dig.GenHash()
}

// SpecCount returns the number of specs currently loaded (diagnostic use).
func (h *Handle) SpecCount() int {
	return h.store.Len()
}

// Close releases every mapped region owned by the handle. Repeated calls
// are no-ops (spec.md §4.8).
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return h.pool.CloseAll()
}
