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

package binloader

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// errOverrun is returned by cursor reads that would run past the end of the
// mapped region; every call site wraps it into selerrors.ErrFormat, which
// is how spec.md §9 Open Question 1 (a skip overrunning the region is a
// FormatError, not silently ignored) falls out naturally here: every byte
// range we consume, including ones we mean to discard, goes through take().
var errOverrun = errors.New("binloader: declared byte count overruns region")

// cursor is a forward-only reader over a byte slice that never copies: the
// slices it returns from take() alias the input, matching the "borrowed
// from mmap" discipline spec.md §3/§4.1 require for regex and stem bytes.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) i32() (int32, error) {
	v, err := c.u32()
	return int32(v), err
}

// take returns the next n bytes as a sub-slice of the cursor's backing
// array, advancing the cursor. It fails with errOverrun if fewer than n
// bytes remain.
func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || n > len(c.data)-c.pos {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", errOverrun, n, len(c.data)-c.pos)
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}
