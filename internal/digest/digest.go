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

// Package digest implements digest_add_specfile/digest_gen_hash (spec.md
// §6.2): a running content hash over every specfile and overlay a handle
// loads, so two handles built from byte-identical inputs can be told apart
// from ones built from inputs that merely look equivalent after parsing.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Builder accumulates specfile bytes into a single digest. The zero value
// is ready to use.
type Builder struct {
	h hash.Hash
}

func (b *Builder) lazyInit() {
	if b.h == nil {
		b.h = sha256.New()
	}
}

// AddSpecfile folds path and contents into the running digest. Path is
// included so that two byte-identical files loaded from different
// locations still produce distinguishable digests, matching
// digest_add_specfile's behavior of hashing the file's identity alongside
// its bytes.
func (b *Builder) AddSpecfile(path string, contents []byte) {
	b.lazyInit()
	// length-prefix the path so "ab"+"c" and "a"+"bc" can't collide.
	var lenBuf [8]byte
	writeUint64(lenBuf[:], uint64(len(path)))
	b.h.Write(lenBuf[:])
	b.h.Write([]byte(path))
	b.h.Write(contents)
}

func writeUint64(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

// GenHash finalizes the digest and returns it as a lowercase hex string.
// Calling GenHash does not prevent further AddSpecfile calls; each call
// returns the hash of everything added so far.
func (b *Builder) GenHash() string {
	b.lazyInit()
	sum := b.h.Sum(nil)
	return hex.EncodeToString(sum)
}
