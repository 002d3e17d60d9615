// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gameid.

package lzma

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// newTestStream builds a decoder + Reader for payload, preceded by a
// freshly encoded header, ready to have Process/ProcessStream called on
// it.
func newTestStream(t *testing.T, lc, lp, pb int, unpackedSize *uint64, payload []byte) (*Decoder, *Reader) {
	t.Helper()
	header := encodeHeader(lc, lp, pb, minDictSize, unpackedSize)
	full := append(header, payload...)

	r := bytes.NewReader(full)
	params, err := ReadHeader(r, ReadFromHeader, 0)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}

	d := NewDecoder()
	d.Reset()
	if err := d.SetParams(params); err != nil {
		t.Fatalf("SetParams: %v", err)
	}

	reader, err := NewReader(r, d)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	return d, reader
}

func TestProcessEmptyPayloadKnownSizeZero(t *testing.T) {
	t.Parallel()

	enc := newTestRangeEncoder()
	enc.flush()

	_, reader := newTestStream(t, 3, 0, 2, u64p(0), enc.out.Bytes())

	var out bytes.Buffer
	if err := reader.Process(&out); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("output = %q, want empty", out.String())
	}
}

func TestProcessSingleLiteral(t *testing.T) {
	t.Parallel()

	st := newTestEncState(3, 0, 2)
	enc := newTestRangeEncoder()
	st.encodeLiteral(enc, 'A')
	enc.flush()

	_, reader := newTestStream(t, 3, 0, 2, u64p(1), enc.out.Bytes())

	var out bytes.Buffer
	if err := reader.Process(&out); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.String() != "A" {
		t.Fatalf("output = %q, want %q", out.String(), "A")
	}
}

func TestProcessShortRep(t *testing.T) {
	t.Parallel()

	st := newTestEncState(3, 0, 2)
	enc := newTestRangeEncoder()
	st.encodeLiteral(enc, 'A')
	st.encodeShortRep(enc)
	enc.flush()

	_, reader := newTestStream(t, 3, 0, 2, u64p(2), enc.out.Bytes())

	var out bytes.Buffer
	if err := reader.Process(&out); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.String() != "AA" {
		t.Fatalf("output = %q, want %q", out.String(), "AA")
	}
}

func TestProcessCrossBoundaryMatch(t *testing.T) {
	t.Parallel()

	st := newTestEncState(3, 0, 2)
	enc := newTestRangeEncoder()
	st.encodeLiteral(enc, 'A')
	st.encodeMatch(enc, 3, 1)
	enc.flush()

	_, reader := newTestStream(t, 3, 0, 2, u64p(4), enc.out.Bytes())

	var out bytes.Buffer
	if err := reader.Process(&out); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.String() != "AAAA" {
		t.Fatalf("output = %q, want %q", out.String(), "AAAA")
	}
}

func TestProcessMatchedLiteral(t *testing.T) {
	t.Parallel()

	st := newTestEncState(3, 0, 2)
	enc := newTestRangeEncoder()
	st.encodeLiteral(enc, 'A')
	st.encodeMatch(enc, 2, 1)
	st.encodeLiteral(enc, 'B')
	enc.flush()

	_, reader := newTestStream(t, 3, 0, 2, u64p(4), enc.out.Bytes())

	var out bytes.Buffer
	if err := reader.Process(&out); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.String() != "AAAB" {
		t.Fatalf("output = %q, want %q", out.String(), "AAAB")
	}
}

func helloWithEOS() []byte {
	st := newTestEncState(3, 0, 2)
	enc := newTestRangeEncoder()
	for _, b := range []byte("hello") {
		st.encodeLiteral(enc, b)
	}
	st.encodeEOS(enc)
	enc.flush()
	return enc.out.Bytes()
}

func TestProcessUnknownSizeEOS(t *testing.T) {
	t.Parallel()

	d, reader := newTestStream(t, 3, 0, 2, nil, helloWithEOS())

	var out bytes.Buffer
	if err := reader.Process(&out); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.String() != "hello" {
		t.Fatalf("output = %q, want %q", out.String(), "hello")
	}
	if d.Status() != StatusFinished {
		t.Fatalf("Status = %v, want StatusFinished", d.Status())
	}
}

// oneByteReader serves at most one byte per Read call, simulating a
// stream that delivers input one byte at a time.
type oneByteReader struct{ data []byte }

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

func TestProcessStreamPartialFeed(t *testing.T) {
	t.Parallel()

	payload := helloWithEOS()
	header := encodeHeader(3, 0, 2, minDictSize, nil)
	full := append(header, payload...)

	src := &oneByteReader{data: full}
	params, err := ReadHeader(src, ReadFromHeader, 0)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}

	d := NewDecoder()
	d.Reset()
	if err := d.SetParams(params); err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	reader, err := NewReader(src, d)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	var out bytes.Buffer
	for i := 0; i < 200 && d.Status() != StatusFinished; i++ {
		if err := reader.ProcessStream(&out); err != nil {
			t.Fatalf("ProcessStream iteration %d: %v", i, err)
		}
	}
	if d.Status() != StatusFinished {
		t.Fatalf("decoder never reached StatusFinished within iteration budget")
	}
	if out.String() != "hello" {
		t.Fatalf("output = %q, want %q", out.String(), "hello")
	}
}

func TestProcessEosFoundButMoreBytesAvailable(t *testing.T) {
	t.Parallel()

	payload := append(helloWithEOS(), 0xAB)
	_, reader := newTestStream(t, 3, 0, 2, nil, payload)

	var out bytes.Buffer
	err := reader.Process(&out)
	if !errors.Is(err, ErrEosFoundButMoreBytesAvailable) {
		t.Fatalf("Process: got %v, want ErrEosFoundButMoreBytesAvailable", err)
	}
}

func TestProcessSizeMismatch(t *testing.T) {
	t.Parallel()

	st := newTestEncState(3, 0, 2)
	enc := newTestRangeEncoder()
	st.encodeLiteral(enc, 'A')
	st.encodeEOS(enc)
	enc.flush()

	_, reader := newTestStream(t, 3, 0, 2, u64p(2), enc.out.Bytes())

	var out bytes.Buffer
	err := reader.Process(&out)
	var mismatch *ProcessedSizeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Process: got %v, want *ProcessedSizeMismatchError", err)
	}
	if mismatch.Expected != 2 || mismatch.Actual != 1 {
		t.Fatalf("unexpected fields: %+v", mismatch)
	}
}
