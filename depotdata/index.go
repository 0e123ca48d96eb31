// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depotdata

import "go.chromium.org/luci/common/errors"

// IndexVersion selects which on-disk dialect ParseIndex should decode.
type IndexVersion int

// The two Index dialects this package understands.
const (
	IndexV2 IndexVersion = 2
	IndexV3 IndexVersion = 3
)

const (
	indexMagicV2 uint32 = 0x53413201 // "2AS" + 0x01
	indexMagicV3 uint32 = 0x53413301 // "3AS" + 0x01
)

// FileType is the dialect-free encoding of what a file's blocks need done to
// them to recover plaintext. The bit layout is fixed across both on-disk
// dialects: bit 0 is "compressed", bit 1 is "encrypted".
type FileType byte

// The four FileType values, in the stable enum order lsblk relies on.
const (
	FileTypeRaw                 FileType = 0
	FileTypeCompressed          FileType = 1
	FileTypeEncrypted           FileType = 2
	FileTypeEncryptedCompressed FileType = 3
)

// Compressed reports whether blocks of this type need inflating.
func (t FileType) Compressed() bool { return t&1 != 0 }

// Encrypted reports whether blocks of this type need decrypting.
func (t FileType) Encrypted() bool { return t&2 != 0 }

// String renders t the way lsblk prints it.
func (t FileType) String() string {
	switch t {
	case FileTypeRaw:
		return "raw"
	case FileTypeCompressed:
		return "compressed"
	case FileTypeEncrypted:
		return "encrypted"
	case FileTypeEncryptedCompressed:
		return "encrypted_compressed"
	default:
		return "unknown"
	}
}

// Block describes one on-disk chunk of a file's content within the Storage
// blob.
type Block struct {
	StorageOffset uint64
	RawLength     uint32
	StoredLength  uint32
}

// FileLayout is the dialect-free, per-file result of decoding an Index:
// what has to be done to its blocks, and where they live in Storage.
type FileLayout struct {
	Type   FileType
	Blocks []Block
}

// Index maps file-id to FileLayout, uniformly regardless of which on-disk
// dialect it was parsed from.
type Index struct {
	files map[uint32]FileLayout
}

// Lookup returns the FileLayout for fileid, or ok==false if the Index has no
// entry for it (ErrUnknownFileID territory for callers that require one).
func (idx *Index) Lookup(fileid uint32) (FileLayout, bool) {
	fl, ok := idx.files[fileid]
	return fl, ok
}

// FileIDs returns every file-id present in the Index, in no particular
// order.
func (idx *Index) FileIDs() []uint32 {
	ids := make([]uint32, 0, len(idx.files))
	for id := range idx.files {
		ids = append(ids, id)
	}
	return ids
}

// ParseIndex decodes buf as the given dialect into a uniform Index.
func ParseIndex(buf []byte, version IndexVersion) (*Index, error) {
	switch version {
	case IndexV2:
		return parseIndexV2(buf)
	case IndexV3:
		return parseIndexV3(buf)
	default:
		return nil, errors.Reason("unknown index version %(v)d").D("v", version).Err()
	}
}

func parseIndexV3(buf []byte) (*Index, error) {
	r := NewReader(buf)

	magic, err := r.ReadU32()
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading v3 index magic").Err()
	}
	if magic != indexMagicV3 {
		return nil, errors.Annotate(ErrBadMagic).Reason("v3 index magic 0x%(got)x").D("got", magic).Err()
	}

	itemCount, err := r.ReadU32()
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading v3 item_count").Err()
	}
	fileCount, err := r.ReadU32()
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading v3 file_count").Err()
	}
	_ = itemCount
	blockCount, err := r.ReadU32()
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading v3 block_count").Err()
	}

	type fileRecord struct {
		fileid          uint32
		ftype           FileType
		firstBlockIndex uint32
		blockCount      uint32
	}
	records := make([]fileRecord, fileCount)
	for i := range records {
		fr := &records[i]
		if fr.fileid, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading v3 file record %(i)d fileid").D("i", i).Err()
		}
		typeByte, err := r.ReadU8()
		if err != nil {
			return nil, errors.Annotate(err).Reason("reading v3 file record %(i)d filetype").D("i", i).Err()
		}
		fr.ftype = FileType(typeByte)
		if _, err := r.ReadBytes(3); err != nil { // alignment padding
			return nil, errors.Annotate(err).Reason("reading v3 file record %(i)d padding").D("i", i).Err()
		}
		if fr.firstBlockIndex, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading v3 file record %(i)d first_block_index").D("i", i).Err()
		}
		if fr.blockCount, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading v3 file record %(i)d block_count").D("i", i).Err()
		}
	}

	blocks := make([]Block, blockCount)
	for i := range blocks {
		b := &blocks[i]
		if b.StorageOffset, err = r.ReadU64(); err != nil {
			return nil, errors.Annotate(err).Reason("reading v3 block %(i)d storage_offset").D("i", i).Err()
		}
		if b.RawLength, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading v3 block %(i)d raw_length").D("i", i).Err()
		}
		if b.StoredLength, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading v3 block %(i)d stored_length").D("i", i).Err()
		}
	}

	files := make(map[uint32]FileLayout, len(records))
	for _, fr := range records {
		fl, err := sliceBlocks(blocks, fr.firstBlockIndex, fr.blockCount, fr.fileid)
		if err != nil {
			return nil, err
		}
		files[fr.fileid] = FileLayout{Type: fr.ftype, Blocks: fl}
	}
	return &Index{files: files}, nil
}

func parseIndexV2(buf []byte) (*Index, error) {
	r := NewReader(buf)

	magic, err := r.ReadU32()
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading v2 index magic").Err()
	}
	if magic != indexMagicV2 {
		return nil, errors.Annotate(ErrBadMagic).Reason("v2 index magic 0x%(got)x").D("got", magic).Err()
	}

	itemCount, err := r.ReadU32()
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading v2 item_count").Err()
	}
	fileCount, err := r.ReadU32()
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading v2 file_count").Err()
	}
	_ = itemCount
	blockCount, err := r.ReadU32()
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading v2 block_count").Err()
	}

	type fileRecord struct {
		fileid          uint32
		flags           uint32
		firstBlockIndex uint32
		blockCount      uint32
	}
	records := make([]fileRecord, fileCount)
	for i := range records {
		fr := &records[i]
		if fr.fileid, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading v2 file record %(i)d fileid").D("i", i).Err()
		}
		if fr.flags, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading v2 file record %(i)d flags").D("i", i).Err()
		}
		if fr.firstBlockIndex, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading v2 file record %(i)d first_block_index").D("i", i).Err()
		}
		if fr.blockCount, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading v2 file record %(i)d block_count").D("i", i).Err()
		}
	}

	blocks := make([]Block, blockCount)
	for i := range blocks {
		b := &blocks[i]
		offset32, err := r.ReadU32()
		if err != nil {
			return nil, errors.Annotate(err).Reason("reading v2 block %(i)d storage_offset").D("i", i).Err()
		}
		b.StorageOffset = uint64(offset32)
		if b.RawLength, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading v2 block %(i)d raw_length").D("i", i).Err()
		}
		if b.StoredLength, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading v2 block %(i)d stored_length").D("i", i).Err()
		}
	}

	files := make(map[uint32]FileLayout, len(records))
	for _, fr := range records {
		fl, err := sliceBlocks(blocks, fr.firstBlockIndex, fr.blockCount, fr.fileid)
		if err != nil {
			return nil, err
		}
		// v2 stores filetype as a bitfield in the flags word rather than an
		// explicit byte; only the low two bits are meaningful.
		files[fr.fileid] = FileLayout{Type: FileType(fr.flags & 0x3), Blocks: fl}
	}
	return &Index{files: files}, nil
}

// sliceBlocks returns the ordered, non-overlapping block list for one file
// and validates that it doesn't run off the end of the shared blocks table.
func sliceBlocks(blocks []Block, first, count, fileid uint32) ([]Block, error) {
	if count == 0 {
		return nil, nil
	}
	end := uint64(first) + uint64(count)
	if end > uint64(len(blocks)) {
		return nil, errors.Reason("fileid %(id)d block range [%(first)d,%(end)d) exceeds %(n)d blocks").
			D("id", fileid).D("first", first).D("end", end).D("n", len(blocks)).Err()
	}
	out := make([]Block, count)
	copy(out, blocks[first:end])
	for i := 1; i < len(out); i++ {
		if out[i].StorageOffset < out[i-1].StorageOffset+uint64(out[i-1].StoredLength) {
			return nil, errors.Reason("fileid %(id)d block %(i)d overlaps previous block").
				D("id", fileid).D("i", i).Err()
		}
	}
	return out, nil
}
