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

// Package binformat defines the constants of the compiled rule file's wire
// layout (spec.md §6.1): magic and version thresholds, plus the magic sniff
// PeekMagic. internal/binloader uses the constants to parse the format;
// internal/specfile and the selabel package use PeekMagic to tell binary
// from text files. The constants live in their own package so a future
// writer/dumper tool (in the spirit of the teacher's dump-package command)
// can share them.
package binformat

// Magic is the four-byte little-endian magic every compiled rule file must
// start with.
const Magic uint32 = 0xf97cff8f

// Version thresholds. Each constant is the minimum on-disk version at
// which the named field first appears.
const (
	// VersionBase is the oldest supported version: stems and specs only,
	// no regex-engine version/arch fingerprint, no prefix_len.
	VersionBase uint32 = 1
	// VersionPCRE adds the reg_ver_len/reg_ver fields.
	VersionPCRE uint32 = 2
	// VersionRegexArch adds the arch_len/arch fields.
	VersionRegexArch uint32 = 3
	// VersionMode is carried for documentation/fidelity with spec.md §6.1;
	// this implementation always encodes Spec.Mode as a fixed 4-byte
	// field (Go has no platform-variable mode_t), so no format branch is
	// needed at this threshold.
	VersionMode uint32 = 4
	// VersionPrefixLen adds the per-spec prefix_len field.
	VersionPrefixLen uint32 = 5

	// MaxKnownVersion is the highest version this loader accepts.
	MaxKnownVersion uint32 = VersionPrefixLen
)

// PeekMagic reports whether the first 4 bytes of data equal Magic,
// implementing the specfile resolver's binary-vs-text sniff (spec.md §4.3).
func PeekMagic(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	got := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	return got == Magic
}
