// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depotdata

import "go.chromium.org/luci/common/errors"

const checksumMagic uint32 = 0x4D534b43 // "CKSM" little-endian
const checksumVersion uint32 = 1

// ChecksumWindowSize is the number of plaintext bytes covered by each
// checksum entry, except possibly the last one for a given file.
const ChecksumWindowSize = 0x8000

// ChecksumMapEntry records where a single file's checksum windows live in
// the flat Sums array.
type ChecksumMapEntry struct {
	FirstIdx uint32
	Count    uint32
}

// Checksum is the fully decoded Checksum file: a per-file-id map into a flat
// array of per-32KiB-window sums.
type Checksum struct {
	Map  map[uint32]ChecksumMapEntry
	Sums []uint32
}

// NumChecksums returns how many checksum windows are recorded for fileid
// (zero for a fileid absent from the map, matching a zero-length file).
func (c *Checksum) NumChecksums(fileid uint32) uint32 {
	return c.Map[fileid].Count
}

// Windows returns the slice of per-window sums for fileid.
func (c *Checksum) Windows(fileid uint32) []uint32 {
	e := c.Map[fileid]
	return c.Sums[e.FirstIdx : e.FirstIdx+e.Count]
}

// ParseChecksum decodes a Checksum file from buf.
func ParseChecksum(buf []byte) (*Checksum, error) {
	r := NewReader(buf)

	magic, err := r.ReadU32()
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading checksum magic").Err()
	}
	if magic != checksumMagic {
		return nil, errors.Annotate(ErrBadMagic).Reason("checksum magic 0x%(got)x").D("got", magic).Err()
	}
	version, err := r.ReadU32()
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading checksum version").Err()
	}
	if version > checksumVersion {
		return nil, errors.Annotate(ErrUnsupportedVersion).Reason("checksum version %(got)d").D("got", version).Err()
	}

	mapCount, err := r.ReadU32()
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading map_count").Err()
	}
	sumCount, err := r.ReadU32()
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading sum_count").Err()
	}

	m := make(map[uint32]ChecksumMapEntry, mapCount)
	for fileid := uint32(0); fileid < mapCount; fileid++ {
		var e ChecksumMapEntry
		if e.FirstIdx, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading map[%(id)d].firstidx").D("id", fileid).Err()
		}
		if e.Count, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading map[%(id)d].count").D("id", fileid).Err()
		}
		if uint64(e.FirstIdx)+uint64(e.Count) > uint64(sumCount) {
			return nil, errors.Reason("map[%(id)d] range [%(first)d,%(end)d) exceeds %(n)d sums").
				D("id", fileid).D("first", e.FirstIdx).D("end", uint64(e.FirstIdx)+uint64(e.Count)).D("n", sumCount).Err()
		}
		m[fileid] = e
	}

	sums := make([]uint32, sumCount)
	for i := range sums {
		if sums[i], err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading sums[%(i)d]").D("i", i).Err()
		}
	}

	// A trailing signature may follow; it is not interpreted by the decoder.
	return &Checksum{Map: m, Sums: sums}, nil
}
