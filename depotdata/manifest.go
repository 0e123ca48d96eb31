// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depotdata

import "go.chromium.org/luci/common/errors"

// NoFileID is the sentinel fileid recorded for directory entries.
const NoFileID uint32 = 0xFFFFFFFF

// NoParent is the parent index recorded for the root entry.
const NoParent uint32 = 0xFFFFFFFF

// ManifestHeaderSize is the fixed size, in bytes, of a Manifest's header.
// The field order matches the legacy on-disk layout exactly; Reserved pads
// the header out to its true 56-byte width and is otherwise unused.
const ManifestHeaderSize = 56

// ManifestHeader is the fixed header that precedes a Manifest's directory
// entries.
type ManifestHeader struct {
	HeaderVersion    uint32
	CacheID          uint32
	GCFVersion       uint32
	ItemCount        uint32
	FileCount        uint32
	BlockSize        uint32
	DirSize          uint32
	FilenameHeapSize uint32
	Info1Count       uint32
	CopyCount        uint32
	LocalCount       uint32
	Fingerprint      uint32
	Checksum         uint32
	Reserved         uint32
}

// DirEntrySize is the fixed size, in bytes, of one DirEntry record.
const DirEntrySize = 28

// DirEntry describes one node -- file or directory -- in a Manifest's tree.
type DirEntry struct {
	// Index is this entry's position in Manifest.Entries; it is not stored
	// on disk but is the value that Parent/NextSibling/FirstChild of other
	// entries, and fileid lookups elsewhere, refer to.
	Index uint32

	NameOffset  uint32
	ItemSize    uint32
	FileID      uint32
	DirType     uint32
	Parent      uint32
	NextSibling uint32
	FirstChild  uint32
}

// IsDir reports whether this entry is a directory.
func (e *DirEntry) IsDir() bool { return e.DirType == 0 }

// Manifest is the fully decoded filesystem tree metadata for a depot.
type Manifest struct {
	Header  ManifestHeader
	Entries []DirEntry
	heap    []byte
}

func readManifestHeader(r *Reader) (ManifestHeader, error) {
	var h ManifestHeader
	fields := []*uint32{
		&h.HeaderVersion, &h.CacheID, &h.GCFVersion, &h.ItemCount, &h.FileCount,
		&h.BlockSize, &h.DirSize, &h.FilenameHeapSize, &h.Info1Count,
		&h.CopyCount, &h.LocalCount, &h.Fingerprint, &h.Checksum, &h.Reserved,
	}
	for _, f := range fields {
		v, err := r.ReadU32()
		if err != nil {
			return h, errors.Annotate(err).Reason("reading manifest header").Err()
		}
		*f = v
	}
	return h, nil
}

// ParseManifest decodes a complete Manifest from buf: the header, the
// directory-entry table, and the filename heap. The hashtable, copy-hint and
// local-file-hint tables that follow are not materialized -- the extractor
// never consults them -- but their declared sizes are validated against the
// remaining buffer so a manifest with a truncated tail is rejected rather
// than silently desynchronized.
func ParseManifest(buf []byte) (*Manifest, error) {
	r := NewReader(buf)

	h, err := readManifestHeader(r)
	if err != nil {
		return nil, err
	}

	entries := make([]DirEntry, h.ItemCount)
	for i := range entries {
		e := &entries[i]
		e.Index = uint32(i)
		if e.NameOffset, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading entry %(i)d name_offset").D("i", i).Err()
		}
		if e.ItemSize, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading entry %(i)d item_size").D("i", i).Err()
		}
		if e.FileID, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading entry %(i)d fileid").D("i", i).Err()
		}
		if e.DirType, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading entry %(i)d dirtype").D("i", i).Err()
		}
		if e.Parent, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading entry %(i)d parent").D("i", i).Err()
		}
		if e.NextSibling, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading entry %(i)d next_sibling").D("i", i).Err()
		}
		if e.FirstChild, err = r.ReadU32(); err != nil {
			return nil, errors.Annotate(err).Reason("reading entry %(i)d first_child").D("i", i).Err()
		}
	}

	heap, err := r.ReadBytes(int(h.FilenameHeapSize))
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading filename heap").Err()
	}

	// Validate (without materializing) the hashtable, copy-hint and
	// local-file-hint tables: each is a flat array of fixed-size records
	// whose count is given by the header, and the extractor never reads
	// their contents.
	const hashEntrySize = 4 // one bucket-head index per hashtable bucket
	const hintEntrySize = 4 // one fileid per copy/local-file hint
	for _, sz := range []int{
		int(h.Info1Count) * hashEntrySize,
		int(h.CopyCount) * hintEntrySize,
		int(h.LocalCount) * hintEntrySize,
	} {
		if _, err := r.ReadBytes(sz); err != nil {
			return nil, errors.Annotate(err).Reason("validating trailing hint tables").Err()
		}
	}

	m := &Manifest{Header: h, Entries: entries, heap: heap}
	if err := m.checkInvariants(); err != nil {
		return nil, err
	}
	return m, nil
}

// checkInvariants enforces the structural rules spec.md requires of every
// Manifest: entry 0 is the empty-named root, every non-root entry's parent
// points at a directory, file-ids are unique, and dirtype==0 iff
// fileid==NoFileID.
func (m *Manifest) checkInvariants() error {
	if len(m.Entries) == 0 {
		return errors.Reason("manifest has no entries, not even a root").Err()
	}
	root := &m.Entries[0]
	if !root.IsDir() || root.FileID != NoFileID {
		return errors.Reason("entry 0 is not a directory root").Err()
	}

	seenFileIDs := make(map[uint32]bool, m.Header.FileCount)
	for i := range m.Entries {
		e := &m.Entries[i]
		if e.IsDir() != (e.FileID == NoFileID) {
			return errors.Reason("entry %(i)d: dirtype/fileid mismatch").D("i", i).Err()
		}
		if !e.IsDir() {
			if seenFileIDs[e.FileID] {
				return errors.Reason("duplicate fileid %(id)d at entry %(i)d").
					D("id", e.FileID).D("i", i).Err()
			}
			seenFileIDs[e.FileID] = true
		}
		if i != 0 && int(e.Parent) >= len(m.Entries) {
			return errors.Reason("entry %(i)d has out-of-range parent %(p)d").
				D("i", i).D("p", e.Parent).Err()
		}
		if i != 0 && !m.Entries[e.Parent].IsDir() {
			return errors.Reason("entry %(i)d's parent %(p)d is not a directory").
				D("i", i).D("p", e.Parent).Err()
		}
	}
	return nil
}

// Name returns entry's filename from the filename heap. The root entry's
// name is always the empty string.
func (m *Manifest) Name(e *DirEntry) (string, error) {
	if e.Index == 0 {
		return "", nil
	}
	return CStringAt(m.heap, e.NameOffset)
}
