/*******************************************************************************
*
* Copyright 2015 Stefan Majewsky <majewsky@gmx.net>
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

// Package textloader reads the line-oriented rule file format: each
// non-blank, non-comment line is "pattern [filetype] context". It is the
// process_line collaborator of spec.md §6.2: no regex compilation happens
// here, specs stay uncompiled until first lookup (spec.md §4.2).
package textloader

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/holocm/go-selabel/internal/selerrors"
	"github.com/holocm/go-selabel/internal/specstore"
)

// fileTypeSuffixes maps the optional bracketed file-type token (e.g.
// "--", "-d", "-l") to a Mode filter, following the conventional
// file_contexts notation.
var fileTypeSuffixes = map[string]uint32{
	"--": specstore.ModeRegular,
	"-d": specstore.ModeDir,
	"-l": specstore.ModeSymlink,
	"-b": specstore.ModeBlock,
	"-c": specstore.ModeChar,
	"-p": specstore.ModeFIFO,
	"-s": specstore.ModeSocket,
}

var metaChars = "*?.+[]()^$\\|{}"

func hasMetaChars(pattern string) bool {
	return strings.ContainsAny(pattern, metaChars)
}

// fixedPrefixLen returns the length of pattern's leading literal substring,
// i.e. everything before the first regex metacharacter.
func fixedPrefixLen(pattern string) int {
	idx := strings.IndexAny(pattern, metaChars)
	if idx == -1 {
		return len(pattern)
	}
	return idx
}

// Validate checks (and may rewrite) a raw context string loaded from a
// rule file. A nil Validate performs no checking.
type Validate func(rawContext string) (string, error)

// ProcessLine parses one line of a text rule file and, if it carries a
// rule, appends a Spec to store. Blank lines and lines starting with '#'
// produce no spec and no error. lineno is used only to annotate errors.
// validate, if non-nil, is consulted for the line's context before the
// spec is appended.
func ProcessLine(store *specstore.Store, line string, lineno int, validate Validate) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("%w: line %d: expected at least 2 fields, got %d", selerrors.ErrFormat, lineno, len(fields))
	}

	pattern := fields[0]
	mode := specstore.ModeAny
	var contextFields []string

	if len(fields) >= 3 {
		if m, ok := fileTypeSuffixes[fields[1]]; ok {
			mode = m
			contextFields = fields[2:]
		} else {
			contextFields = fields[1:]
		}
	} else {
		contextFields = fields[1:]
	}

	context := strings.Join(contextFields, " ")
	if context == "" {
		return fmt.Errorf("%w: line %d: missing context", selerrors.ErrFormat, lineno)
	}
	if validate != nil {
		rewritten, err := validate(context)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", selerrors.ErrValidate, lineno, err)
		}
		context = rewritten
	}

	store.Append(&specstore.Spec{
		RegexStr:     []byte(pattern),
		StemID:       -1, // text rules are never stem-narrowed, only binary-compiled ones are
		Mode:         mode,
		Label:        specstore.Label{Raw: context},
		HasMetaChars: hasMetaChars(pattern),
		PrefixLen:    fixedPrefixLen(pattern),
	})
	return nil
}

// Load reads every line of r through ProcessLine, stopping at the first
// malformed line (spec.md §4.2: "lines failing validation abort the load").
func Load(r io.Reader, store *specstore.Store, validate Validate) error {
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		if err := ProcessLine(store, scanner.Text(), lineno, validate); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", selerrors.ErrIO, err)
	}
	return nil
}
