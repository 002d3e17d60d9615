// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gameid.
//
// go-gameid is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-gameid is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-gameid.  If not, see <https://www.gnu.org/licenses/>.

package lzma

import (
	"encoding/binary"
	"fmt"
	"io"
)

// unknownSizeMarker is the all-ones 8-byte field value meaning "unpacked
// size is not known up front; rely on the end-of-stream marker instead".
const unknownSizeMarker = ^uint64(0)

// UnpackedSizeMode selects how ReadHeader obtains the unpacked size: from
// the 8-byte field that follows the properties and dictionary size, or
// from a value the caller already knows out of band.
type UnpackedSizeMode int

const (
	// ReadFromHeader reads the 8-byte unpacked-size field and treats the
	// all-ones value as "unknown".
	ReadFromHeader UnpackedSizeMode = iota
	// ReadHeaderButUseProvided reads and discards the 8-byte field,
	// using the caller-supplied size instead (for containers that embed
	// a valid but redundant size).
	ReadHeaderButUseProvided
	// UseProvided skips the 8-byte field entirely, using the caller-
	// supplied size (for containers that store unpacked size elsewhere).
	UseProvided
)

// LzmaParams is the decoded form of the 13-byte LZMA stream header: one
// properties byte (lc, lp, pb), a 4-byte little-endian dictionary size,
// and (depending on mode) an 8-byte little-endian unpacked size.
type LzmaParams struct {
	Lc, Lp, Pb   int
	DictSize     uint32
	UnpackedSize *uint64
}

// ReadHeader parses a 13-byte LZMA header from r. provided is only
// consulted when mode is ReadHeaderButUseProvided or UseProvided.
func ReadHeader(r io.Reader, mode UnpackedSizeMode, provided uint64) (LzmaParams, error) {
	var propsByte [1]byte
	if _, err := io.ReadFull(r, propsByte[:]); err != nil {
		return LzmaParams{}, fmt.Errorf("%w: %w", ErrHeaderTooShort, err)
	}
	if propsByte[0] >= 225 {
		return LzmaParams{}, &InvalidHeaderError{Props: propsByte[0]}
	}
	p := int(propsByte[0])
	lc := p % 9
	p /= 9
	lp := p % 5
	pb := p / 5

	var dictBuf [4]byte
	if _, err := io.ReadFull(r, dictBuf[:]); err != nil {
		return LzmaParams{}, fmt.Errorf("%w: %w", ErrHeaderTooShort, err)
	}
	dictSize := binary.LittleEndian.Uint32(dictBuf[:])
	if dictSize < minDictSize {
		dictSize = minDictSize
	}

	var unpackedSize *uint64
	switch mode {
	case ReadFromHeader:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return LzmaParams{}, fmt.Errorf("%w: %w", ErrHeaderTooShort, err)
		}
		v := binary.LittleEndian.Uint64(buf[:])
		if v != unknownSizeMarker {
			unpackedSize = &v
		}
	case ReadHeaderButUseProvided:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return LzmaParams{}, fmt.Errorf("%w: %w", ErrHeaderTooShort, err)
		}
		sz := provided
		unpackedSize = &sz
	case UseProvided:
		sz := provided
		unpackedSize = &sz
	}

	return LzmaParams{Lc: lc, Lp: lp, Pb: pb, DictSize: dictSize, UnpackedSize: unpackedSize}, nil
}
