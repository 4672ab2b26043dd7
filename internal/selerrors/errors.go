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

// Package selerrors holds the sentinel error values shared by every
// internal package and re-exported by the top-level selabel package
// (spec.md §7). Keeping them here, instead of in the selabel package
// itself, lets internal/binloader, internal/specfile etc. return them
// without an import cycle back to selabel.
package selerrors

import "errors"

var (
	// ErrNotFound means no spec matched a lookup, or the matched spec's
	// context was the <<none>> sentinel. Not an error condition by itself.
	ErrNotFound = errors.New("selabel: no matching spec")
	// ErrFormat means the compiled binary rule file is malformed.
	ErrFormat = errors.New("selabel: malformed compiled rule file")
	// ErrVersionMismatch means the compiled file's regex-engine version
	// string differs from the host engine's.
	ErrVersionMismatch = errors.New("selabel: regex engine version mismatch")
	// ErrValidate means a context failed syntactic validation.
	ErrValidate = errors.New("selabel: context failed validation")
	// ErrDuplicateSpec means two rules had an identical pattern and
	// compatible modes while validating.
	ErrDuplicateSpec = errors.New("selabel: duplicate spec")
	// ErrIO wraps a stat/open/read/mmap failure.
	ErrIO = errors.New("selabel: I/O error")
	// ErrNameTooLong means a specfile path exceeded the platform limit.
	ErrNameTooLong = errors.New("selabel: specfile path too long")
	// ErrInternal means the regex engine returned an unexpected error.
	ErrInternal = errors.New("selabel: internal regex engine error")
)
