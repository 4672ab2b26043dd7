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

package selabel

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/toml"
)

// DefaultSpecfilePath is used when no explicit paths are passed to Init.
const DefaultSpecfilePath = "/etc/selinux/config/contexts/files/file_contexts"

// ValidateFunc optionally checks a raw context string's syntax while
// loading. A nil ValidateFunc (the default) performs no validation.
type ValidateFunc func(rawContext string) error

// Environment carries the process-wide configuration spec.md §9 calls out
// as "Global configuration paths", injected explicitly instead of being
// read from process globals inside the core.
type Environment struct {
	// Paths are the specfile base paths to load; if empty, Init uses
	// DefaultSpecfilePath.
	Paths []string
	// Subset restricts loaded/returned specs to those whose pattern starts
	// with this literal prefix; empty means no restriction.
	Subset string
	// BaseOnly skips the ".homedirs"/".local" overlay attempt on the first
	// path.
	BaseOnly bool
	// Validate is consulted for every raw context string loaded, when
	// non-nil.
	Validate ValidateFunc
	// Logger receives structured diagnostics (overlay misses at Debug,
	// nodups_specs findings and zero-match stats at Warn). Defaults to
	// slog.Default() if left nil.
	Logger *slog.Logger
	// Validating, when true, runs nodups_specs during Init and turns its
	// findings into a load-aborting error (spec.md §9 Open Question 3).
	Validating bool
}

// logger returns e.Logger, or slog.Default() if unset.
func (e *Environment) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// environmentFile is the decode target for an Environment TOML config.
type environmentFile struct {
	Paths      []string `toml:"paths"`
	Subset     string   `toml:"subset"`
	BaseOnly   bool     `toml:"base_only"`
	Validating bool     `toml:"validating"`
}

// LoadEnvironmentFile decodes an Environment's Paths/Subset/BaseOnly/
// Validating fields from a TOML file, following the teacher's own
// package-definition format (src/holo-build/parser.go). Logger and
// Validate are process-level collaborators and are never set from config.
func LoadEnvironmentFile(path string) (Environment, error) {
	var file environmentFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return Environment{}, fmt.Errorf("%w: decode %s: %v", ErrFormat, path, err)
	}
	return Environment{
		Paths:      file.Paths,
		Subset:     file.Subset,
		BaseOnly:   file.BaseOnly,
		Validating: file.Validating,
	}, nil
}
