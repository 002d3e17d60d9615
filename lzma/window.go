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

import "io"

// minDictSize is the smallest dictionary size the decoder will honor; a
// header declaring anything smaller is rounded up to it.
const minDictSize = 1 << 12

// Window is the output side of the decoder: every decoded literal or
// match is appended through it, and it is also the source of "the last
// byte written" and "the byte dist positions back", both of which the
// literal and match decode paths need to read.
type Window interface {
	// AppendLiteral writes a single decoded byte to both the window's
	// own history and out.
	AppendLiteral(out io.Writer, b byte) error

	// AppendLZ copies length bytes from dist positions back in the
	// window's history to the current end, writing the copied bytes to
	// out. dist < length is valid: the newly produced bytes become
	// valid source for the remainder of the copy.
	AppendLZ(out io.Writer, length, dist int) error

	// LastOr returns the most recently written byte, or def if nothing
	// has been written yet.
	LastOr(def byte) byte

	// LastN returns the byte dist positions back from the current end
	// (dist == 1 is the most recent byte). It errors if dist reaches
	// before the start of the window.
	LastN(dist int) (byte, error)

	// Len reports the total number of bytes written so far.
	Len() uint64

	// SetDictSize records the dictionary size declared by the stream
	// header.
	SetDictSize(n uint32) error

	// Reset discards all history.
	Reset()
}

// SliceWindow is a Window backed by a single growing slice holding the
// entire decoded history. It favors simplicity over bounded memory use:
// distances are validated against the amount of output produced so far,
// not against a fixed ring-buffer capacity.
type SliceWindow struct {
	buf      []byte
	dictSize uint32
}

// NewSliceWindow returns an empty SliceWindow.
func NewSliceWindow() *SliceWindow { return &SliceWindow{} }

func (w *SliceWindow) SetDictSize(n uint32) error {
	if n < minDictSize {
		n = minDictSize
	}
	w.dictSize = n
	return nil
}

func (w *SliceWindow) Reset() {
	w.buf = w.buf[:0]
}

func (w *SliceWindow) Len() uint64 { return uint64(len(w.buf)) }

func (w *SliceWindow) LastOr(def byte) byte {
	if len(w.buf) == 0 {
		return def
	}
	return w.buf[len(w.buf)-1]
}

func (w *SliceWindow) LastN(dist int) (byte, error) {
	if dist <= 0 || dist > len(w.buf) {
		return 0, ErrInvalidBackReference
	}
	return w.buf[len(w.buf)-dist], nil
}

func (w *SliceWindow) AppendLiteral(out io.Writer, b byte) error {
	w.buf = append(w.buf, b)
	_, err := out.Write(w.buf[len(w.buf)-1:])
	return err
}

// AppendLZ copies a back-reference using the exponential self-overlap
// doubling technique: seed the new region with one distance-chunk copied
// from history, then repeatedly double the already-copied span until the
// whole match length is filled. This is what makes dist < length (the
// classic "copy a run that overlaps its own still-being-written output")
// work with a single contiguous append instead of a byte-at-a-time loop.
func (w *SliceWindow) AppendLZ(out io.Writer, length, dist int) error {
	if dist <= 0 || dist > len(w.buf) {
		return ErrInvalidBackReference
	}

	outputPos := len(w.buf)
	srcPos := outputPos - dist
	w.buf = append(w.buf, make([]byte, length)...)

	if dist >= length {
		copy(w.buf[outputPos:outputPos+length], w.buf[srcPos:srcPos+length])
	} else {
		copy(w.buf[outputPos:outputPos+dist], w.buf[srcPos:outputPos])
		copied := dist
		for copied < length {
			n := copy(w.buf[outputPos+copied:outputPos+length], w.buf[outputPos:outputPos+copied])
			copied += n
		}
	}

	_, err := out.Write(w.buf[outputPos : outputPos+length])
	return err
}
