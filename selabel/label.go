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

import "github.com/holocm/go-selabel/internal/specstore"

// Label is a (raw, translated) security-context pair, as returned by
// Lookup/BestMatch.
type Label = specstore.Label

// NoneContext is the sentinel raw context meaning "no label assigned"; a
// lookup that resolves to it surfaces as ErrNotFound instead.
const NoneContext = specstore.NoneContext

// File-type filter bits for Lookup/BestMatch's mode parameter, or 0
// (ModeAny) to match any file type.
const (
	ModeAny     = specstore.ModeAny
	ModeFIFO    = specstore.ModeFIFO
	ModeChar    = specstore.ModeChar
	ModeDir     = specstore.ModeDir
	ModeBlock   = specstore.ModeBlock
	ModeRegular = specstore.ModeRegular
	ModeSymlink = specstore.ModeSymlink
	ModeSocket  = specstore.ModeSocket
)
