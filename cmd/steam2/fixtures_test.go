// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/binary"

	"github.com/eepycats/steam2-extract/depotdata"
)

// fixtureEntry describes one manifest node for buildFixtureManifest, by
// name, matching depotdata's DirEntry wire shape.
type fixtureEntry struct {
	name     string
	itemSize uint32
	fileid   uint32
	dirtype  uint32
	parent   uint32
}

func buildFixtureManifest(cacheID, version uint32, entries []fixtureEntry) []byte {
	heap := &bytes.Buffer{}
	offsets := make([]uint32, len(entries))
	for i, e := range entries {
		offsets[i] = uint32(heap.Len())
		heap.WriteString(e.name)
		heap.WriteByte(0)
	}

	fileCount := uint32(0)
	for _, e := range entries {
		if e.dirtype != 0 {
			fileCount++
		}
	}

	buf := &bytes.Buffer{}
	header := []uint32{
		1, cacheID, version, uint32(len(entries)), fileCount, 0x2000,
		uint32(len(entries) * depotdata.DirEntrySize), uint32(heap.Len()),
		0, 0, 0, 0, 0, 0,
	}
	for _, f := range header {
		binary.Write(buf, binary.LittleEndian, f)
	}
	for i, e := range entries {
		binary.Write(buf, binary.LittleEndian, offsets[i])
		binary.Write(buf, binary.LittleEndian, e.itemSize)
		binary.Write(buf, binary.LittleEndian, e.fileid)
		binary.Write(buf, binary.LittleEndian, e.dirtype)
		binary.Write(buf, binary.LittleEndian, e.parent)
		binary.Write(buf, binary.LittleEndian, uint32(0)) // next_sibling
		binary.Write(buf, binary.LittleEndian, uint32(0)) // first_child
	}
	buf.Write(heap.Bytes())
	return buf.Bytes()
}

func buildFixtureIndexV3(files []fixtureEntry, blockOf map[uint32][]byte) []byte {
	type blockRec struct {
		offset uint64
		raw    uint32
		stored uint32
	}
	var blocks []blockRec
	firstBlock := make(map[uint32]uint32)
	var offset uint64
	for _, f := range files {
		if f.dirtype == 0 {
			continue
		}
		content := blockOf[f.fileid]
		firstBlock[f.fileid] = uint32(len(blocks))
		blocks = append(blocks, blockRec{offset: offset, raw: uint32(len(content)), stored: uint32(len(content))})
		offset += uint64(len(content))
	}

	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint32(0x53413301))
	fileEntries := 0
	for _, f := range files {
		if f.dirtype != 0 {
			fileEntries++
		}
	}
	binary.Write(buf, binary.LittleEndian, uint32(fileEntries+len(blocks)))
	binary.Write(buf, binary.LittleEndian, uint32(fileEntries))
	binary.Write(buf, binary.LittleEndian, uint32(len(blocks)))

	for _, f := range files {
		if f.dirtype == 0 {
			continue
		}
		binary.Write(buf, binary.LittleEndian, f.fileid)
		buf.WriteByte(byte(depotdata.FileTypeRaw))
		buf.Write([]byte{0, 0, 0})
		binary.Write(buf, binary.LittleEndian, firstBlock[f.fileid])
		binary.Write(buf, binary.LittleEndian, uint32(1))
	}
	for _, b := range blocks {
		binary.Write(buf, binary.LittleEndian, b.offset)
		binary.Write(buf, binary.LittleEndian, b.raw)
		binary.Write(buf, binary.LittleEndian, b.stored)
	}
	return buf.Bytes()
}

func buildFixtureStorage(blockOf map[uint32][]byte, order []uint32) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, depotdata.StorageMagic)
	binary.Write(buf, binary.LittleEndian, uint32(1234))
	binary.Write(buf, binary.LittleEndian, depotdata.StorageVersion)
	for _, id := range order {
		buf.Write(blockOf[id])
	}
	return buf.Bytes()
}

func buildFixtureChecksum(fileid uint32, content []byte) []byte {
	var sums []uint32
	for lo := 0; lo < len(content); lo += depotdata.ChecksumWindowSize {
		hi := lo + depotdata.ChecksumWindowSize
		if hi > len(content) {
			hi = len(content)
		}
		sums = append(sums, depotdata.BlockSum(content[lo:hi]))
	}
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint32(0x4D534b43))
	binary.Write(buf, binary.LittleEndian, uint32(1))
	binary.Write(buf, binary.LittleEndian, uint32(fileid+1))
	binary.Write(buf, binary.LittleEndian, uint32(len(sums)))
	for i := uint32(0); i <= fileid; i++ {
		if i == fileid {
			binary.Write(buf, binary.LittleEndian, uint32(0))
			binary.Write(buf, binary.LittleEndian, uint32(len(sums)))
		} else {
			binary.Write(buf, binary.LittleEndian, uint32(0))
			binary.Write(buf, binary.LittleEndian, uint32(0))
		}
	}
	for _, s := range sums {
		binary.Write(buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}
