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
	"bytes"
	"fmt"
	"io"
)

// maxLcLpBits bounds lc+lp: the literal probability table needs
// 1<<(lc+lp) slots of 0x300 probabilities each, and this is the largest
// sum this decoder is willing to allocate for. The LZMA header format
// allows lc up to 8 and lp up to 4 (sum up to 12); streams asking for
// more than maxLcLpBits are rejected rather than silently accepted,
// matching 7-Zip's own conventional lc+lp<=4 ceiling with headroom to
// spare.
const maxLcLpBits = 8
const maxLiteralProbsLen = 1 << maxLcLpBits

// eosDistance is the sentinel new-match distance meaning "end of
// stream": the decoded distance field (before the implicit +1) equals
// 0xFFFFFFFF.
const eosDistance = 0xFFFFFFFF

// Status reports a Decoder's lifecycle position.
type Status int

const (
	// StatusUninitialized means Reset has never been called.
	StatusUninitialized Status = iota
	// StatusContinue means the decoder is ready to decode more packets.
	StatusContinue
	// StatusFinished means the end-of-stream marker has been consumed.
	StatusFinished
)

// Decoder holds all adaptive probability state and the 12-state LZMA
// packet state machine. It decodes exactly one packet per call to step;
// the chunked driver in chunked.go is what turns a byte stream into
// output.
type Decoder struct {
	status Status
	Params *LzmaParams
	Window Window

	literalProbs [][0x300]uint16

	posSlotStorage [4][64]uint16
	posSlotDecoder [4]bitTree

	alignStorage [16]uint16
	alignDecoder bitTree

	posDecoders [115]uint16

	isMatch    [192]uint16
	isRep      [12]uint16
	isRepG0    [12]uint16
	isRepG1    [12]uint16
	isRepG2    [12]uint16
	isRep0Long [192]uint16

	state int
	rep   [4]uint32

	lenDecoder    lenDecoder
	repLenDecoder lenDecoder
}

// NewDecoder returns a Decoder in the Uninitialized state, writing
// decoded output into an internal SliceWindow. Call Reset and then
// SetParams before decoding anything.
func NewDecoder() *Decoder {
	return &Decoder{Window: NewSliceWindow()}
}

// Status reports the decoder's current lifecycle position.
func (d *Decoder) Status() Status { return d.status }

// Reset clears all adaptive probabilities back to one-half, zeroes the
// repeat-distance LRU and packet state, and discards the output window's
// history. It must be called before the first SetParams, and again
// before decoding a new, unrelated stream.
func (d *Decoder) Reset() {
	d.status = StatusContinue
	d.Window.Reset()
	d.Params = nil

	for i := range d.posSlotDecoder {
		d.posSlotDecoder[i].init(6, d.posSlotStorage[i][:])
	}
	d.alignDecoder.init(4, d.alignStorage[:])
	resetProbs(d.posDecoders[:])
	resetProbs(d.isMatch[:])
	resetProbs(d.isRep[:])
	resetProbs(d.isRepG0[:])
	resetProbs(d.isRepG1[:])
	resetProbs(d.isRepG2[:])
	resetProbs(d.isRep0Long[:])

	d.state = 0
	d.rep = [4]uint32{}

	d.lenDecoder.init()
	d.repLenDecoder.init()
}

// SetParams binds the stream's lc/lp/pb and dictionary size, allocating
// the literal-probability table sized to this stream's lc+lp. It must be
// called after Reset and before the first decode call.
func (d *Decoder) SetParams(p LzmaParams) error {
	if d.status == StatusUninitialized {
		return ErrNotReset
	}
	needed := 1 << uint(p.Lc+p.Lp)
	if needed > maxLiteralProbsLen {
		return &ProbabilitiesBufferTooSmallError{Needed: needed, Available: maxLiteralProbsLen}
	}
	if err := d.Window.SetDictSize(p.DictSize); err != nil {
		return err
	}
	d.literalProbs = make([][0x300]uint16, needed)
	for i := range d.literalProbs {
		resetProbs(d.literalProbs[i][:])
	}
	params := p
	d.Params = &params
	return nil
}

// TryStep runs one speculative, non-mutating decode step against a
// standalone byte slice, starting from the given range-coder interval.
// It returns an error when the slice does not hold enough bytes to
// complete the step, and also when the packet itself is invalid (a
// matched literal whose match byte lies before the start of the output).
// Nothing about the Decoder changes either way, so it is safe to call
// repeatedly as more bytes are buffered.
func (d *Decoder) TryStep(residual []byte, rng, code uint32) error {
	scratch := FromParts(SliceSource{bytes.NewReader(residual)}, rng, code)
	_, err := d.step(io.Discard, scratch, false)
	return err
}

// step decodes exactly one packet: a literal, or a new-distance match, or
// a repeat-distance match (including the one-byte short-rep form). When
// update is false, rc's registers are still advanced (so the caller can
// tell whether the source held enough bytes) but no adaptive probability,
// decoder state, or window content is touched.
func (d *Decoder) step(w io.Writer, rc *RangeDecoder, update bool) (Status, error) {
	params := d.Params
	posState := int(d.Window.Len()) & ((1 << uint(params.Pb)) - 1)

	isMatchBit, err := rc.DecodeBit(&d.isMatch[(d.state<<4)+posState], update)
	if err != nil {
		return StatusContinue, err
	}
	if !isMatchBit {
		b, err := d.decodeLiteral(rc, update)
		if err != nil {
			return StatusContinue, err
		}
		if update {
			if err := d.Window.AppendLiteral(w, b); err != nil {
				return StatusContinue, err
			}
			switch {
			case d.state < 4:
				d.state = 0
			case d.state < 10:
				d.state -= 3
			default:
				d.state -= 6
			}
		}
		return StatusContinue, nil
	}

	var length int
	isRepBit, err := rc.DecodeBit(&d.isRep[d.state], update)
	if err != nil {
		return StatusContinue, err
	}

	if isRepBit {
		isRepG0, err := rc.DecodeBit(&d.isRepG0[d.state], update)
		if err != nil {
			return StatusContinue, err
		}
		if !isRepG0 {
			shortRep, err := rc.DecodeBit(&d.isRep0Long[(d.state<<4)+posState], update)
			if err != nil {
				return StatusContinue, err
			}
			if !shortRep {
				if update {
					if d.state < 7 {
						d.state = 9
					} else {
						d.state = 11
					}
					dist := int(d.rep[0]) + 1
					if err := d.Window.AppendLZ(w, 1, dist); err != nil {
						return StatusContinue, err
					}
				}
				return StatusContinue, nil
			}
			// rep[0] reused as-is; fall through to the shared length decode.
		} else {
			isRepG1, err := rc.DecodeBit(&d.isRepG1[d.state], update)
			if err != nil {
				return StatusContinue, err
			}
			idx := 1
			if isRepG1 {
				isRepG2, err := rc.DecodeBit(&d.isRepG2[d.state], update)
				if err != nil {
					return StatusContinue, err
				}
				if isRepG2 {
					idx = 3
				} else {
					idx = 2
				}
			}
			if update {
				dist := d.rep[idx]
				for i := idx; i > 0; i-- {
					d.rep[i] = d.rep[i-1]
				}
				d.rep[0] = dist
			}
		}

		length, err = d.repLenDecoder.decode(rc, posState, update)
		if err != nil {
			return StatusContinue, err
		}
		if update {
			if d.state < 7 {
				d.state = 8
			} else {
				d.state = 11
			}
		}
	} else {
		if update {
			d.rep[3] = d.rep[2]
			d.rep[2] = d.rep[1]
			d.rep[1] = d.rep[0]
		}
		length, err = d.lenDecoder.decode(rc, posState, update)
		if err != nil {
			return StatusContinue, err
		}
		if update {
			if d.state < 7 {
				d.state = 7
			} else {
				d.state = 10
			}
		}

		rep0, err := d.decodeDistance(rc, length, update)
		if err != nil {
			return StatusContinue, err
		}
		if update {
			d.rep[0] = rep0
			if d.rep[0] == eosDistance {
				finOK, err := rc.IsFinishedOK()
				if err != nil {
					return StatusContinue, err
				}
				if finOK {
					d.status = StatusFinished
					return StatusFinished, nil
				}
				return StatusContinue, ErrEosFoundButMoreBytesAvailable
			}
		}
	}

	if update {
		dist := int(d.rep[0]) + 1
		if err := d.Window.AppendLZ(w, length+2, dist); err != nil {
			return StatusContinue, err
		}
	}
	return StatusContinue, nil
}

// decodeLiteral decodes one literal byte. When the previous packet was a
// match (state >= 7), the literal is coded relative to the byte at the
// current match distance, breaking out of the matched-byte tree as soon
// as a decoded bit disagrees with the predicted one.
func (d *Decoder) decodeLiteral(rc *RangeDecoder, update bool) (byte, error) {
	params := d.Params
	prevByte := d.Window.LastOr(0)

	posMask := (1 << uint(params.Lp)) - 1
	litState := ((int(d.Window.Len()) & posMask) << uint(params.Lc)) | (int(prevByte) >> uint(8-params.Lc))
	probs := &d.literalProbs[litState]

	result := uint32(1)

	if d.state >= 7 {
		matchByte, err := d.Window.LastN(int(d.rep[0]) + 1)
		if err != nil {
			return 0, err
		}
		mb := uint32(matchByte)
		for result < 0x100 {
			matchBit := (mb >> 7) & 1
			mb <<= 1
			idx := ((1 + matchBit) << 8) + result
			bit, err := rc.DecodeBit(&probs[idx], update)
			if err != nil {
				return 0, err
			}
			b := boolToU32(bit)
			result = (result << 1) | b
			if matchBit != b {
				break
			}
		}
	}

	for result < 0x100 {
		bit, err := rc.DecodeBit(&probs[result], update)
		if err != nil {
			return 0, err
		}
		result = (result << 1) | boolToU32(bit)
	}

	return byte(result - 0x100), nil
}

// decodeDistance decodes a new match's distance. The position slot (a
// 6-bit tree keyed by the length bucket) selects how the remaining bits
// are read: slots below 4 are the distance itself, slots 4-13 read their
// low bits through a reverse bit-tree indexed into the shared
// pos_decoders table, and slots 14 and up read direct-coded high bits
// plus a 4-bit reverse-tree alignment.
//
// base uses the canonical OR form (2 | (posSlot & 1)) << numDirectBits,
// not the XOR form that appears in some reference decoders: with XOR,
// the low bit of an even-looking slot can flip into a negative
// pos_decoders offset for some slot values.
func (d *Decoder) decodeDistance(rc *RangeDecoder, length int, update bool) (uint32, error) {
	lenState := length
	if lenState > 3 {
		lenState = 3
	}

	posSlot, err := d.posSlotDecoder[lenState].parse(rc, update)
	if err != nil {
		return 0, err
	}
	if posSlot < 4 {
		return posSlot, nil
	}

	numDirectBits := int(posSlot>>1) - 1
	base := (2 | (posSlot & 1)) << uint(numDirectBits)

	if posSlot < 14 {
		offset := int(base) - int(posSlot)
		if offset < 0 {
			return 0, fmt.Errorf("lzma: corrupt stream: negative pos_decoders offset for slot %d", posSlot)
		}
		extra, err := rc.ParseReverseBitTree(numDirectBits, d.posDecoders[:], offset, update)
		if err != nil {
			return 0, err
		}
		base += extra
		return base, nil
	}

	hi, err := rc.DecodeDirectBits(numDirectBits - 4)
	if err != nil {
		return 0, err
	}
	base += hi << 4

	lo, err := d.alignDecoder.parseReverse(rc, update)
	if err != nil {
		return 0, err
	}
	base += lo
	return base, nil
}
