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

// bitTree is a fixed-width binary probability tree backed by a caller-
// supplied slice, so its storage can live inline in a fixed array field
// (pos_slot_decoder, align_decoder) without a separate heap allocation.
type bitTree struct {
	numBits int
	probs   []uint16
}

func (t *bitTree) init(numBits int, storage []uint16) {
	t.numBits = numBits
	t.probs = storage[:1<<uint(numBits)]
	t.reset()
}

func (t *bitTree) reset() { resetProbs(t.probs) }

func (t *bitTree) parse(d *RangeDecoder, update bool) (uint32, error) {
	return d.ParseBitTree(t.numBits, t.probs, update)
}

func (t *bitTree) parseReverse(d *RangeDecoder, update bool) (uint32, error) {
	return d.ParseReverseBitTree(t.numBits, t.probs, 0, update)
}
