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

import "github.com/holocm/go-selabel/internal/selerrors"

// Sentinel errors (spec.md §7). Re-exported from internal/selerrors so that
// internal packages can return them without importing this package.
var (
	ErrNotFound        = selerrors.ErrNotFound
	ErrFormat          = selerrors.ErrFormat
	ErrVersionMismatch = selerrors.ErrVersionMismatch
	ErrValidate        = selerrors.ErrValidate
	ErrDuplicateSpec   = selerrors.ErrDuplicateSpec
	ErrIO              = selerrors.ErrIO
	ErrNameTooLong     = selerrors.ErrNameTooLong
	ErrInternal        = selerrors.ErrInternal
)
