// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depotdata

import "go.chromium.org/luci/common/errors"

// StorageMagic is the magic number at the start of every Storage blob.
const StorageMagic uint32 = 0x44415403 // "\x03TAD" little-endian

// StorageVersion is the only Storage blob version this package decodes.
const StorageVersion uint32 = 1

// StorageHeaderSize is the number of bytes occupied by a StorageHeader on
// disk; the blob's payload starts immediately after it.
const StorageHeaderSize = 12

// StorageHeader is the small fixed header at the front of a Storage blob.
// Block offsets recorded in the Index are relative to the byte immediately
// following this header.
type StorageHeader struct {
	Magic   uint32
	CacheID uint32
	Version uint32
}

// ParseStorageHeader decodes a StorageHeader from the first
// StorageHeaderSize bytes of buf and validates its magic and version.
func ParseStorageHeader(buf []byte) (StorageHeader, error) {
	var h StorageHeader
	r := NewReader(buf)

	magic, err := r.ReadU32()
	if err != nil {
		return h, errors.Annotate(err).Reason("reading storage magic").Err()
	}
	if magic != StorageMagic {
		return h, errors.Annotate(ErrBadMagic).Reason("storage magic 0x%(got)x, want 0x%(want)x").
			D("got", magic).D("want", StorageMagic).Err()
	}
	h.Magic = magic

	if h.CacheID, err = r.ReadU32(); err != nil {
		return h, errors.Annotate(err).Reason("reading storage cacheid").Err()
	}
	if h.Version, err = r.ReadU32(); err != nil {
		return h, errors.Annotate(err).Reason("reading storage version").Err()
	}
	if h.Version > StorageVersion {
		return h, errors.Annotate(ErrUnsupportedVersion).Reason("storage version %(got)d > %(max)d").
			D("got", h.Version).D("max", StorageVersion).Err()
	}
	return h, nil
}
