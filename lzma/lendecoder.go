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

// numPosStates is the largest number of pos_state buckets a length
// decoder needs: pb maxes out at 4, so pos_state ranges over 0..15.
const numPosStates = 16

// lenDecoder decodes a match length as a three-tier choice: a short
// (0-7), mid (8-15), or long (16-271) range, the tier itself chosen by
// two leading adaptive bits and, within the short/mid tiers, by a
// separate bit-tree per pos_state.
type lenDecoder struct {
	choice  uint16
	choice2 uint16

	lowStorage [numPosStates][8]uint16
	midStorage [numPosStates][8]uint16
	lowCoder   [numPosStates]bitTree
	midCoder   [numPosStates]bitTree

	highStorage [256]uint16
	highCoder   bitTree
}

func (l *lenDecoder) init() {
	for i := range l.lowCoder {
		l.lowCoder[i].init(3, l.lowStorage[i][:])
		l.midCoder[i].init(3, l.midStorage[i][:])
	}
	l.highCoder.init(8, l.highStorage[:])
	l.reset()
}

func (l *lenDecoder) reset() {
	l.choice = probInit
	l.choice2 = probInit
	for i := range l.lowCoder {
		l.lowCoder[i].reset()
		l.midCoder[i].reset()
	}
	l.highCoder.reset()
}

// decode returns the length in LZMA's own 0..271 numbering; the
// caller adds the implicit minimum match length of 2.
func (l *lenDecoder) decode(d *RangeDecoder, posState int, update bool) (int, error) {
	bit, err := d.DecodeBit(&l.choice, update)
	if err != nil {
		return 0, err
	}
	if !bit {
		v, err := l.lowCoder[posState].parse(d, update)
		return int(v), err
	}

	bit2, err := d.DecodeBit(&l.choice2, update)
	if err != nil {
		return 0, err
	}
	if !bit2 {
		v, err := l.midCoder[posState].parse(d, update)
		return int(v) + 8, err
	}

	v, err := l.highCoder.parse(d, update)
	return int(v) + 16, err
}
