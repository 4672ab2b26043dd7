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

// Package bundle exports a loaded rule set for shipping to another host: its
// primary specfiles as an ar archive (mirroring how Debian packages nest an
// ar container), and its host-specific overlays (".homedirs", ".local") as
// a cpio archive. This is the writer side of what dump-package's
// DumpAr/DumpCpio read (spec.md never names this operation explicitly; it
// falls out of the ".homedirs"/".local" overlay concept needing a way to
// actually get distributed).
package bundle

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/blakesmith/ar"
	cpio "github.com/surma/gocpio"

	"github.com/holocm/go-selabel/internal/selerrors"
)

// File is one named byte blob to pack into an archive.
type File struct {
	Name     string
	Contents []byte
	Mode     int64
}

// WriteAr packs files into an ar archive, in the order given, preceded by
// the conventional global header every ar reader expects.
func WriteAr(w io.Writer, files []File) error {
	aw := ar.NewWriter(w)
	if err := aw.WriteGlobalHeader(); err != nil {
		return fmt.Errorf("%w: ar global header: %v", selerrors.ErrIO, err)
	}
	for _, f := range files {
		mode := f.Mode
		if mode == 0 {
			mode = 0644
		}
		hdr := &ar.Header{
			Name:    f.Name,
			ModTime: time.Unix(0, 0),
			Uid:     0,
			Gid:     0,
			Mode:    mode,
			Size:    int64(len(f.Contents)),
		}
		if err := aw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("%w: ar header for %s: %v", selerrors.ErrIO, f.Name, err)
		}
		if _, err := aw.Write(f.Contents); err != nil {
			return fmt.Errorf("%w: ar body for %s: %v", selerrors.ErrIO, f.Name, err)
		}
	}
	return nil
}

// WriteCpio packs files into a "newc"-style cpio archive as plain regular
// files, terminated by the usual TRAILER!!! entry.
func WriteCpio(w io.Writer, files []File) error {
	cw := cpio.NewWriter(w)
	defer cw.Close()

	for _, f := range files {
		mode := f.Mode
		if mode == 0 {
			mode = 0644
		}
		hdr := &cpio.Header{
			Name: f.Name,
			Type: cpio.TYPE_REG,
			Mode: mode,
			Size: int64(len(f.Contents)),
			Uid:  0,
			Gid:  0,
		}
		if err := cw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("%w: cpio header for %s: %v", selerrors.ErrIO, f.Name, err)
		}
		if _, err := cw.Write(f.Contents); err != nil {
			return fmt.Errorf("%w: cpio body for %s: %v", selerrors.ErrIO, f.Name, err)
		}
	}
	return nil
}

// ArBytes is a convenience wrapper around WriteAr for callers (e.g. the CLI
// bundle subcommand) that want the archive as an in-memory blob.
func ArBytes(files []File) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteAr(&buf, files); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CpioBytes is the cpio counterpart of ArBytes.
func CpioBytes(files []File) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCpio(&buf, files); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
