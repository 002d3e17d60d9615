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
	"io"
)

// maxResidual is the size of the driver's carry-over buffer: one LZMA
// packet never needs more than this many bytes (a handful of probability
// bits plus up to 5 direct distance bytes), so it is always safe to
// speculatively test a packet against a short prefix of this size before
// committing to decode it from the live stream.
const maxResidual = 20

type driverMode int

const (
	modeFinish driverMode = iota
	modePartial
)

// Reader drives a Decoder across a buffered input, handling both
// all-input-available decoding (Process) and byte-at-a-time streaming
// decoding (ProcessStream) through the same packet loop.
type Reader struct {
	decoder *Decoder
	br      *bufio.Reader
	rc      *RangeDecoder

	residual    [maxResidual]byte
	residualLen int
}

// NewReader wraps r (reading it through a *bufio.Reader if it isn't
// already one) and consumes the range-coder preamble. Decoder must
// already have had Reset and SetParams called on it.
func NewReader(r io.Reader, decoder *Decoder) (*Reader, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	rc, err := NewRangeDecoder(BufioSource{R: br})
	if err != nil {
		return nil, err
	}
	return &Reader{decoder: decoder, br: br, rc: rc}, nil
}

// Process decodes until the stream is fully consumed, assuming all
// remaining input is already available (or will block until it is). A
// malformed-looking packet is always a real error in this mode.
func (r *Reader) Process(w io.Writer) error { return r.run(w, modeFinish) }

// ProcessStream decodes as much as the currently available input allows
// and returns without error the moment a packet would need bytes that
// have not arrived yet. Callers feed more input and call ProcessStream
// again to resume.
func (r *Reader) ProcessStream(w io.Writer) error { return r.run(w, modePartial) }

// topUp reads as many additional bytes as are immediately available
// (never blocking for more than the underlying Read call does) into the
// unused tail of the residual buffer.
func (r *Reader) topUp() error {
	n, err := r.br.Read(r.residual[r.residualLen:maxResidual])
	r.residualLen += n
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

// peekBuffered returns whatever is currently sitting in br's internal
// buffer without consuming it, forcing at most one fill if the buffer is
// presently empty.
func peekBuffered(br *bufio.Reader) ([]byte, error) {
	if br.Buffered() == 0 {
		if _, err := br.Peek(1); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}
	}
	return br.Peek(br.Buffered())
}

func (r *Reader) run(w io.Writer, m driverMode) error {
	if r.decoder.status == StatusUninitialized {
		return ErrNotReset
	}
	params := r.decoder.Params
	if params == nil {
		return ErrParamsNotSet
	}

outer:
	for {
		if params.UnpackedSize != nil {
			if r.decoder.Window.Len() >= *params.UnpackedSize {
				break
			}
		} else {
			switch m {
			case modePartial:
				eof, err := r.rc.IsEOF()
				if err != nil {
					return err
				}
				if eof && r.residualLen == 0 {
					break outer
				}
			case modeFinish:
				finOK, err := r.rc.IsFinishedOK()
				if err != nil {
					return err
				}
				if finOK && r.residualLen == 0 {
					break outer
				}
			}
		}

		if r.residualLen > 0 {
			if err := r.topUp(); err != nil {
				return err
			}

			if m == modePartial && r.residualLen < maxResidual {
				if err := r.decoder.TryStep(r.residual[:r.residualLen], r.rc.Range, r.rc.Code); err != nil {
					return nil
				}
			}

			tmp := bytes.NewReader(r.residual[:r.residualLen])
			scratch := FromParts(SliceSource{R: tmp}, r.rc.Range, r.rc.Code)
			status, err := r.decoder.step(w, scratch, true)
			if err != nil {
				return err
			}
			r.rc.Set(scratch.Range, scratch.Code)

			newLen := tmp.Len()
			consumed := r.residualLen - newLen
			copy(r.residual[:newLen], r.residual[consumed:r.residualLen])
			r.residualLen = newLen

			if status == StatusFinished {
				break
			}
		} else {
			buf, err := peekBuffered(r.br)
			if err != nil {
				return err
			}

			if m == modePartial && len(buf) < maxResidual {
				if err := r.decoder.TryStep(buf, r.rc.Range, r.rc.Code); err != nil {
					return r.topUp()
				}
			}

			status, err := r.decoder.step(w, r.rc, true)
			if err != nil {
				return err
			}
			if status == StatusFinished {
				break
			}
		}
	}

	if params.UnpackedSize != nil && m == modeFinish && *params.UnpackedSize != r.decoder.Window.Len() {
		return &ProcessedSizeMismatchError{Expected: *params.UnpackedSize, Actual: r.decoder.Window.Len()}
	}
	return nil
}
