// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depotdata

import (
	"encoding/binary"

	"go.chromium.org/luci/common/errors"
)

// Reader is a little-endian, bounds-checked cursor over an in-memory buffer.
// It is a pure function of its position: several Readers may share the same
// underlying buffer safely, since none of them mutate it.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for little-endian structured reads starting at
// position 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Tell returns the current read position.
func (r *Reader) Tell() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Len returns the total size of the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Seek moves the cursor to an absolute position. It fails with ErrBadSeek if
// pos is negative or past the end of the buffer.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.buf) {
		return errors.Annotate(ErrBadSeek).Reason("seek to %(pos)d in buffer of %(size)d bytes").
			D("pos", pos).D("size", len(r.buf)).Err()
	}
	r.pos = pos
	return nil
}

// ReadBytes returns the next n bytes as a slice into the underlying buffer
// (not a copy) and advances the cursor. It fails with ErrTruncated if fewer
// than n bytes remain.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, errors.Annotate(ErrTruncated).Reason("need %(need)d bytes, have %(have)d").
			D("need", n).D("have", r.Remaining()).Err()
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (byte, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadCString reads a NUL-terminated string starting at the current
// position, leaving the cursor just past the terminator. It fails with
// ErrTruncated if no NUL byte is found before the end of the buffer.
func (r *Reader) ReadCString() (string, error) {
	start := r.pos
	for r.pos < len(r.buf) {
		if r.buf[r.pos] == 0 {
			s := string(r.buf[start:r.pos])
			r.pos++
			return s, nil
		}
		r.pos++
	}
	r.pos = start
	return "", errors.Annotate(ErrTruncated).Reason("unterminated string at offset %(off)d").
		D("off", start).Err()
}

// CStringAt reads a NUL-terminated string at an absolute offset into buf
// without disturbing r's cursor. Used for filename-heap lookups, where
// entries reference the heap by offset rather than by reading it
// sequentially.
func CStringAt(buf []byte, offset uint32) (string, error) {
	if int(offset) > len(buf) {
		return "", errors.Annotate(ErrTruncated).Reason("name offset %(off)d past heap of %(size)d bytes").
			D("off", offset).D("size", len(buf)).Err()
	}
	end := int(offset)
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	if end >= len(buf) {
		return "", errors.Annotate(ErrTruncated).Reason("unterminated name at offset %(off)d").
			D("off", offset).Err()
	}
	return string(buf[offset:end]), nil
}
