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
	"errors"
	"fmt"
)

// Sentinel errors returned by header parsing and the decoder lifecycle.
var (
	// ErrHeaderTooShort is returned when the input ends before a complete
	// 13-byte LZMA header has been read.
	ErrHeaderTooShort = errors.New("lzma: header too short")

	// ErrEosFoundButMoreBytesAvailable is returned when the decoder reads
	// the end-of-stream distance marker but the range decoder is not
	// finished-ok: the input still has unread bytes behind it, or Code is
	// not zero.
	ErrEosFoundButMoreBytesAvailable = errors.New("lzma: end-of-stream marker found but more input remains")

	// ErrInvalidBackReference is returned when a match references a
	// distance that reaches before the start of the decoded output.
	ErrInvalidBackReference = errors.New("lzma: back-reference outside of decoded output")

	// ErrNotReset is returned when Process/ProcessStream is called on a
	// Decoder that has never had Reset called on it.
	ErrNotReset = errors.New("lzma: decoder not reset")

	// ErrParamsNotSet is returned when Process/ProcessStream is called on
	// a Decoder that has been reset but never given parameters via
	// SetParams.
	ErrParamsNotSet = errors.New("lzma: decoder parameters not set")
)

// InvalidHeaderError reports a properties byte outside the valid LZMA
// range (lc + 9*lp + 45*pb must be < 225).
type InvalidHeaderError struct {
	Props byte
}

func (e *InvalidHeaderError) Error() string {
	return fmt.Sprintf("lzma: invalid header properties byte %d", e.Props)
}

// ProbabilitiesBufferTooSmallError reports that the stream's lc+lp
// combination needs more literal-probability slots than this decoder is
// configured to allocate.
type ProbabilitiesBufferTooSmallError struct {
	Needed    int
	Available int
}

func (e *ProbabilitiesBufferTooSmallError) Error() string {
	return fmt.Sprintf("lzma: literal probability buffer too small: needed %d slots, have %d", e.Needed, e.Available)
}

// ProcessedSizeMismatchError reports that Process finished (by reaching
// the end-of-stream marker, or by a match carrying the output past the
// declared size) with a byte count different from the known unpacked
// size. Input that runs out before either happens surfaces as the read
// error instead.
type ProcessedSizeMismatchError struct {
	Expected uint64
	Actual   uint64
}

func (e *ProcessedSizeMismatchError) Error() string {
	return fmt.Sprintf("lzma: processed %d bytes, expected %d", e.Actual, e.Expected)
}
