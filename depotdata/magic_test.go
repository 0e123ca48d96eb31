// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depotdata

import (
	"encoding/binary"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	. "go.chromium.org/luci/common/testing/assertions"
)

func buildStorageHeader(magic, cacheid, version uint32) []byte {
	buf := make([]byte, StorageHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[4:8], cacheid)
	binary.LittleEndian.PutUint32(buf[8:12], version)
	return buf
}

func TestParseStorageHeader(t *testing.T) {
	t.Parallel()

	Convey("ParseStorageHeader", t, func() {
		Convey("good", func() {
			buf := buildStorageHeader(StorageMagic, 42, 1)
			h, err := ParseStorageHeader(buf)
			So(err, ShouldBeNil)
			So(h.CacheID, ShouldEqual, uint32(42))
			So(h.Version, ShouldEqual, uint32(1))
		})

		Convey("bad magic", func() {
			buf := buildStorageHeader(0xDEADBEEF, 42, 1)
			_, err := ParseStorageHeader(buf)
			So(err, ShouldErrLike, "storage magic 0xdeadbeef, want 0x44415403")
		})

		Convey("unsupported version", func() {
			buf := buildStorageHeader(StorageMagic, 42, 99)
			_, err := ParseStorageHeader(buf)
			So(err, ShouldErrLike, "storage version 99 > 1")
		})

		Convey("truncated", func() {
			_, err := ParseStorageHeader([]byte{1, 2, 3})
			So(err, ShouldErrLike, ErrTruncated)
		})
	})
}
