// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depotdata

import (
	"bytes"
	"encoding/binary"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type indexBlock struct {
	offset uint64
	raw    uint32
	stored uint32
}

type indexFile struct {
	fileid uint32
	ftype  FileType
	first  uint32
	count  uint32
}

func buildIndexV3(files []indexFile, blocks []indexBlock) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint32(0x53413301))
	binary.Write(buf, binary.LittleEndian, uint32(len(files)+len(blocks)))
	binary.Write(buf, binary.LittleEndian, uint32(len(files)))
	binary.Write(buf, binary.LittleEndian, uint32(len(blocks)))
	for _, f := range files {
		binary.Write(buf, binary.LittleEndian, f.fileid)
		buf.WriteByte(byte(f.ftype))
		buf.Write([]byte{0, 0, 0})
		binary.Write(buf, binary.LittleEndian, f.first)
		binary.Write(buf, binary.LittleEndian, f.count)
	}
	for _, b := range blocks {
		binary.Write(buf, binary.LittleEndian, b.offset)
		binary.Write(buf, binary.LittleEndian, b.raw)
		binary.Write(buf, binary.LittleEndian, b.stored)
	}
	return buf.Bytes()
}

func buildIndexV2(files []indexFile, blocks []indexBlock) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint32(0x53413201))
	binary.Write(buf, binary.LittleEndian, uint32(len(files)+len(blocks)))
	binary.Write(buf, binary.LittleEndian, uint32(len(files)))
	binary.Write(buf, binary.LittleEndian, uint32(len(blocks)))
	for _, f := range files {
		binary.Write(buf, binary.LittleEndian, f.fileid)
		binary.Write(buf, binary.LittleEndian, uint32(f.ftype)&0x3)
		binary.Write(buf, binary.LittleEndian, f.first)
		binary.Write(buf, binary.LittleEndian, f.count)
	}
	for _, b := range blocks {
		binary.Write(buf, binary.LittleEndian, uint32(b.offset))
		binary.Write(buf, binary.LittleEndian, b.raw)
		binary.Write(buf, binary.LittleEndian, b.stored)
	}
	return buf.Bytes()
}

func TestParseIndexV3(t *testing.T) {
	t.Parallel()

	Convey("v3 index", t, func() {
		blocks := []indexBlock{
			{offset: 0, raw: 0x8000, stored: 0x100},
			{offset: 0x100, raw: 0x8000, stored: 0x120},
		}
		files := []indexFile{
			{fileid: 7, ftype: FileTypeEncryptedCompressed, first: 0, count: 2},
		}
		buf := buildIndexV3(files, blocks)

		idx, err := ParseIndex(buf, IndexV3)
		So(err, ShouldBeNil)

		fl, ok := idx.Lookup(7)
		So(ok, ShouldBeTrue)
		So(fl.Type, ShouldEqual, FileTypeEncryptedCompressed)
		So(fl.Type.String(), ShouldEqual, "encrypted_compressed")
		So(len(fl.Blocks), ShouldEqual, 2)
		So(fl.Blocks[1].StorageOffset, ShouldEqual, uint64(0x100))

		_, ok = idx.Lookup(99)
		So(ok, ShouldBeFalse)

		So(idx.FileIDs(), ShouldResemble, []uint32{7})
	})

	Convey("v3 rejects bad magic", t, func() {
		buf := buildIndexV3(nil, nil)
		buf[0] ^= 0xFF
		_, err := ParseIndex(buf, IndexV3)
		So(err, ShouldNotBeNil)
	})

	Convey("v3 rejects an out-of-range block range", t, func() {
		files := []indexFile{{fileid: 1, ftype: FileTypeRaw, first: 0, count: 5}}
		buf := buildIndexV3(files, nil)
		_, err := ParseIndex(buf, IndexV3)
		So(err, ShouldNotBeNil)
	})

	Convey("v3 rejects overlapping blocks", t, func() {
		blocks := []indexBlock{
			{offset: 0, raw: 0x8000, stored: 0x200},
			{offset: 0x100, raw: 0x8000, stored: 0x100}, // overlaps the first block
		}
		files := []indexFile{{fileid: 1, ftype: FileTypeRaw, first: 0, count: 2}}
		buf := buildIndexV3(files, blocks)
		_, err := ParseIndex(buf, IndexV3)
		So(err, ShouldNotBeNil)
	})
}

func TestParseIndexV2(t *testing.T) {
	t.Parallel()

	Convey("v2 index stores filetype as flag bits and a 32-bit offset", t, func() {
		blocks := []indexBlock{
			{offset: 0, raw: 0x8000, stored: 0x80},
		}
		files := []indexFile{
			{fileid: 3, ftype: FileTypeCompressed, first: 0, count: 1},
		}
		buf := buildIndexV2(files, blocks)

		idx, err := ParseIndex(buf, IndexV2)
		So(err, ShouldBeNil)

		fl, ok := idx.Lookup(3)
		So(ok, ShouldBeTrue)
		So(fl.Type, ShouldEqual, FileTypeCompressed)
		So(fl.Type.Compressed(), ShouldBeTrue)
		So(fl.Type.Encrypted(), ShouldBeFalse)
	})

	Convey("v2 rejects bad magic", t, func() {
		buf := buildIndexV2(nil, nil)
		buf[0] ^= 0xFF
		_, err := ParseIndex(buf, IndexV2)
		So(err, ShouldNotBeNil)
	})
}

func TestFileTypeString(t *testing.T) {
	t.Parallel()

	Convey("FileType.String covers the full enum", t, func() {
		So(FileTypeRaw.String(), ShouldEqual, "raw")
		So(FileTypeCompressed.String(), ShouldEqual, "compressed")
		So(FileTypeEncrypted.String(), ShouldEqual, "encrypted")
		So(FileTypeEncryptedCompressed.String(), ShouldEqual, "encrypted_compressed")
		So(FileType(99).String(), ShouldEqual, "unknown")
	})
}

func TestParseIndexUnknownVersion(t *testing.T) {
	t.Parallel()

	Convey("ParseIndex rejects unknown versions", t, func() {
		_, err := ParseIndex(nil, IndexVersion(99))
		So(err, ShouldNotBeNil)
	})
}
