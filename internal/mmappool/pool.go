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

// Package mmappool tracks the memory-mapped regions backing strings and
// regex blobs borrowed by a loaded rule set (spec.md §3 "MMAP region",
// §4.8 "Handle close").
package mmappool

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/holocm/go-selabel/internal/selerrors"
)

// Region is one mapped file, kept alive until the owning Pool is closed.
// Borrowed byte slices elsewhere in the handle are sub-slices of Data and
// must not outlive the Pool.
type Region struct {
	Data mmap.MMap
	next *Region
}

// Pool owns a singly-linked list of Regions, all released together by
// CloseAll. A zero Pool is ready to use.
type Pool struct {
	head *Region
}

// Map opens path read-only and maps its entire contents, appending a new
// Region to the pool. The file descriptor is closed before Map returns,
// whether it succeeds or fails (spec.md §5 "file descriptors... closed
// before init returns").
func (p *Pool) Map(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: mmappool: open %s: %v", selerrors.ErrIO, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: mmappool: stat %s: %v", selerrors.ErrIO, path, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: mmappool: %s is empty", selerrors.ErrIO, path)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: mmappool: mmap %s: %v", selerrors.ErrIO, path, err)
	}

	region := &Region{Data: data, next: p.head}
	p.head = region
	return region, nil
}

// CloseAll unmaps every region owned by the pool. It is safe to call
// CloseAll more than once; subsequent calls are no-ops (spec.md §4.8
// "repeated close calls are no-ops").
func (p *Pool) CloseAll() error {
	var firstErr error
	for r := p.head; r != nil; {
		next := r.next
		if err := r.Data.Unmap(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: mmappool: unmap: %v", selerrors.ErrIO, err)
		}
		r.next = nil
		r = next
	}
	p.head = nil
	return firstErr
}

// Len returns the number of regions currently owned by the pool (for tests
// and diagnostics).
func (p *Pool) Len() int {
	n := 0
	for r := p.head; r != nil; r = r.next {
		n++
	}
	return n
}
