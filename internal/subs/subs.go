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

// Package subs loads path-prefix substitution overlays, the
// selabel_subs_init collaborator of spec.md §6.2. A substitution rewrites a
// key's leading path segment before lookup (e.g. "/var/run" -> "/run"), so
// rule sets written against one layout still resolve paths under another.
//
// Two file formats are supported: the legacy two-column line format
// ("from to" per line, '#' comments) used by distribution and local
// ".subs_dist"/".subs" files, and a TOML-flavored bundle ("*.subs.toml")
// for environments that already carry BurntSushi/toml-decoded config.
package subs

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/holocm/go-selabel/internal/selerrors"
)

// Rule is a single prefix substitution.
type Rule struct {
	From string
	To   string
}

// Table holds the substitution rules active for a rule set, longest-prefix
// first so Apply always picks the most specific match.
type Table struct {
	rules []Rule
}

// Add appends rule and keeps the table sorted longest-From-first.
func (t *Table) Add(rule Rule) {
	t.rules = append(t.rules, rule)
	sort.SliceStable(t.rules, func(i, j int) bool {
		return len(t.rules[i].From) > len(t.rules[j].From)
	})
}

// Len returns the number of loaded rules.
func (t *Table) Len() int { return len(t.rules) }

// Apply rewrites path's leading segment through the longest matching rule,
// or returns path unchanged if no rule's From is a path-boundary prefix of
// it (spec.md §6.2 "selabel_subs_init"; the boundary check avoids rewriting
// "/varx" when a rule only covers "/var").
func (t *Table) Apply(path string) string {
	for _, r := range t.rules {
		if path == r.From {
			return r.To
		}
		if strings.HasPrefix(path, r.From+"/") {
			return r.To + path[len(r.From):]
		}
	}
	return path
}

// Load reads the legacy two-column line format from r into t. Blank lines
// and lines starting with '#' are skipped; any other line must have
// exactly two whitespace-separated fields.
func Load(r io.Reader, t *Table) error {
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("%w: subs line %d: expected 2 fields, got %d", selerrors.ErrFormat, lineno, len(fields))
		}
		t.Add(Rule{From: fields[0], To: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", selerrors.ErrIO, err)
	}
	return nil
}

// tomlBundle is the decode target for a ".subs.toml" file.
type tomlBundle struct {
	Substitutions []Rule `toml:"substitutions"`
}

// LoadTOML reads a TOML-flavored substitution bundle from path into t.
func LoadTOML(path string, t *Table) error {
	var bundle tomlBundle
	if _, err := toml.DecodeFile(path, &bundle); err != nil {
		return fmt.Errorf("%w: decode %s: %v", selerrors.ErrFormat, path, err)
	}
	for _, rule := range bundle.Substitutions {
		t.Add(rule)
	}
	return nil
}
