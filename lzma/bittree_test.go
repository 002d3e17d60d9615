// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gameid.

package lzma

import (
	"bufio"
	"bytes"
	"testing"
)

func TestBitTreeRoundTrip(t *testing.T) {
	t.Parallel()

	const numBits = 6
	values := []uint32{0, 1, 31, 32, 63, 17, 5}

	var encStorage [1 << numBits]uint16
	resetProbs(encStorage[:])
	enc := newTestRangeEncoder()
	for _, v := range values {
		encodeBitTree(enc, numBits, encStorage[:], v)
	}
	enc.flush()

	br := bufio.NewReader(bytes.NewReader(enc.out.Bytes()))
	rc, err := NewRangeDecoder(BufioSource{R: br})
	if err != nil {
		t.Fatalf("NewRangeDecoder: %v", err)
	}

	var bt bitTree
	var storage [1 << numBits]uint16
	bt.init(numBits, storage[:])

	for i, want := range values {
		got, err := bt.parse(rc, true)
		if err != nil {
			t.Fatalf("parse[%d]: %v", i, err)
		}
		if got != want {
			t.Fatalf("parse[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestBitTreeReverseRoundTrip(t *testing.T) {
	t.Parallel()

	const numBits = 4
	values := []uint32{0, 1, 15, 7, 9}

	var encStorage [1 << numBits]uint16
	resetProbs(encStorage[:])
	enc := newTestRangeEncoder()
	for _, v := range values {
		encodeReverseBitTree(enc, numBits, encStorage[:], 0, v)
	}
	enc.flush()

	br := bufio.NewReader(bytes.NewReader(enc.out.Bytes()))
	rc, err := NewRangeDecoder(BufioSource{R: br})
	if err != nil {
		t.Fatalf("NewRangeDecoder: %v", err)
	}

	var bt bitTree
	var storage [1 << numBits]uint16
	bt.init(numBits, storage[:])

	for i, want := range values {
		got, err := bt.parseReverse(rc, true)
		if err != nil {
			t.Fatalf("parseReverse[%d]: %v", i, err)
		}
		if got != want {
			t.Fatalf("parseReverse[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestLenDecoderRoundTrip(t *testing.T) {
	t.Parallel()

	values := []int{0, 7, 8, 15, 16, 271, 42}
	posState := 3

	encLen := newTestLenEnc()
	enc := newTestRangeEncoder()
	for _, v := range values {
		encodeLen(enc, encLen, posState, v)
	}
	enc.flush()

	br := bufio.NewReader(bytes.NewReader(enc.out.Bytes()))
	rc, err := NewRangeDecoder(BufioSource{R: br})
	if err != nil {
		t.Fatalf("NewRangeDecoder: %v", err)
	}

	var ld lenDecoder
	ld.init()

	for i, want := range values {
		got, err := ld.decode(rc, posState, true)
		if err != nil {
			t.Fatalf("decode[%d]: %v", i, err)
		}
		if got != want {
			t.Fatalf("decode[%d] = %d, want %d", i, got, want)
		}
	}
}
