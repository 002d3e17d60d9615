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

// Package lzma implements a from-scratch LZMA1 decoder: the range
// (arithmetic) coder, the adaptive bit-probability model, the literal and
// match state machine, and a chunked streaming driver on top of them.
//
// The package does not implement an encoder. It is built to decode the
// classic 13-byte-header LZMA1 stream (as produced by 7-Zip's lzma_alone
// format and embedded uncompressed-size-first variants used by archive
// containers), not the newer LZMA2 chunk framing.
package lzma
