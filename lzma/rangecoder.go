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
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// topValue is the range-coder renormalization threshold: whenever Range
// drops below it, one more input byte is folded into Code and Range is
// shifted back up.
const topValue = 1 << 24

// probBits is the width, in bits, of an adaptive probability. probInit is
// the value every probability starts at: exactly one half.
const (
	probBits = 11
	probInit = uint16(1) << (probBits - 1)
	adaptShift = 5
)

// ByteSource is what a RangeDecoder consumes bytes from. AtEOF reports
// whether the source currently has no more bytes to give without
// performing a destructive read, which is what lets IsFinishedOK and
// IsEOF be called without disturbing decode state.
type ByteSource interface {
	io.ByteReader
	AtEOF() (bool, error)
}

// BufioSource adapts a *bufio.Reader into a ByteSource.
type BufioSource struct {
	R *bufio.Reader
}

func (s BufioSource) ReadByte() (byte, error) { return s.R.ReadByte() }

func (s BufioSource) AtEOF() (bool, error) {
	if _, err := s.R.Peek(1); err != nil {
		if err == io.EOF {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// SliceSource adapts a *bytes.Reader into a ByteSource, used for the
// speculative and committed steps the chunked driver runs against its
// residual buffer.
type SliceSource struct {
	R *bytes.Reader
}

func (s SliceSource) ReadByte() (byte, error) { return s.R.ReadByte() }

func (s SliceSource) AtEOF() (bool, error) { return s.R.Len() == 0, nil }

// RangeDecoder is the LZMA arithmetic decoder: it tracks the current
// interval (Range, Code) and narrows it one adaptive or direct bit at a
// time, pulling a fresh byte from its source whenever Range underflows
// topValue.
type RangeDecoder struct {
	src   ByteSource
	Range uint32
	Code  uint32
}

// NewRangeDecoder reads the 5-byte arithmetic-coder preamble (a padding
// byte, whose value is not checked, followed by a 4-byte big-endian
// initial code value) and returns a decoder ready to parse the first
// packet.
func NewRangeDecoder(src ByteSource) (*RangeDecoder, error) {
	d := &RangeDecoder{src: src, Range: 0xFFFFFFFF}
	if _, err := src.ReadByte(); err != nil {
		return nil, fmt.Errorf("lzma: range decoder init: %w", err)
	}
	var code uint32
	for i := 0; i < 4; i++ {
		b, err := src.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("lzma: range decoder init: %w", err)
		}
		code = (code << 8) | uint32(b)
	}
	d.Code = code
	return d, nil
}

// FromParts builds a RangeDecoder from an already-initialized interval,
// used by the chunked driver to resume decoding against a new source
// (the residual buffer) without repeating the 5-byte preamble.
func FromParts(src ByteSource, rng, code uint32) *RangeDecoder {
	return &RangeDecoder{src: src, Range: rng, Code: code}
}

// Set overwrites the interval in place, used to copy a scratch decoder's
// registers back onto the long-lived one after a committed step.
func (d *RangeDecoder) Set(rng, code uint32) {
	d.Range = rng
	d.Code = code
}

// IsFinishedOK reports whether the stream ended in the canonical way:
// Code has narrowed to exactly zero and the source has nothing left.
func (d *RangeDecoder) IsFinishedOK() (bool, error) {
	if d.Code != 0 {
		return false, nil
	}
	return d.src.AtEOF()
}

// IsEOF reports whether the source has no more bytes available, without
// regard to Code.
func (d *RangeDecoder) IsEOF() (bool, error) { return d.src.AtEOF() }

func (d *RangeDecoder) normalize() error {
	if d.Range < topValue {
		b, err := d.src.ReadByte()
		if err != nil {
			return err
		}
		d.Range <<= 8
		d.Code = (d.Code << 8) | uint32(b)
	}
	return nil
}

// DecodeDirectBit decodes one equiprobable bit: Range is halved and Code
// is compared against the halved Range, with no adaptive probability
// involved.
func (d *RangeDecoder) DecodeDirectBit() (bool, error) {
	d.Range >>= 1
	bit := d.Code >= d.Range
	if bit {
		d.Code -= d.Range
	}
	if err := d.normalize(); err != nil {
		return false, err
	}
	return bit, nil
}

// DecodeDirectBits decodes n equiprobable bits MSB-first into a single
// integer.
func (d *RangeDecoder) DecodeDirectBits(n int) (uint32, error) {
	var result uint32
	for i := 0; i < n; i++ {
		bit, err := d.DecodeDirectBit()
		if err != nil {
			return 0, err
		}
		result = (result << 1) | boolToU32(bit)
	}
	return result, nil
}

// DecodeBit decodes one bit using the adaptive probability *prob,
// narrowing Range/Code accordingly. When update is true, prob is nudged
// toward whichever branch was taken; when false (a speculative dry-run
// step), the probability table is left untouched.
func (d *RangeDecoder) DecodeBit(prob *uint16, update bool) (bool, error) {
	bound := (d.Range >> probBits) * uint32(*prob)
	var bit bool
	if d.Code < bound {
		if update {
			*prob += (uint16(1)<<probBits - *prob) >> adaptShift
		}
		d.Range = bound
	} else {
		if update {
			*prob -= *prob >> adaptShift
		}
		d.Code -= bound
		d.Range -= bound
		bit = true
	}
	if err := d.normalize(); err != nil {
		return false, err
	}
	return bit, nil
}

// ParseBitTree decodes a numBits-wide value through a binary tree of
// adaptive probabilities stored at probs[1:1<<numBits], MSB first.
func (d *RangeDecoder) ParseBitTree(numBits int, probs []uint16, update bool) (uint32, error) {
	idx := uint32(1)
	for i := 0; i < numBits; i++ {
		bit, err := d.DecodeBit(&probs[idx], update)
		if err != nil {
			return 0, err
		}
		idx = (idx << 1) | boolToU32(bit)
	}
	return idx - (1 << uint(numBits)), nil
}

// ParseReverseBitTree is ParseBitTree with the decoded bits accumulated
// LSB first instead of MSB first, used for the low-order distance bits
// and the alignment tree. probs is indexed starting at offset, mirroring
// how the standalone pos_decoders table is addressed at a distinct
// offset per position slot.
func (d *RangeDecoder) ParseReverseBitTree(numBits int, probs []uint16, offset int, update bool) (uint32, error) {
	var result uint32
	idx := 1
	for i := 0; i < numBits; i++ {
		bit, err := d.DecodeBit(&probs[offset+idx], update)
		if err != nil {
			return 0, err
		}
		b := boolToU32(bit)
		idx = (idx << 1) | int(b)
		result |= b << uint(i)
	}
	return result, nil
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func resetProbs(p []uint16) {
	for i := range p {
		p[i] = probInit
	}
}
