// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package steam2net

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFrameRoundTrip(t *testing.T) {
	t.Parallel()

	Convey("writeFrame/readFrame", t, func() {
		buf := &bytes.Buffer{}

		Convey("with a payload", func() {
			So(writeFrame(buf, msgGetFile, []byte("hello")), ShouldBeNil)
			msgType, payload, err := readFrame(buf)
			So(err, ShouldBeNil)
			So(msgType, ShouldEqual, msgGetFile)
			So(payload, ShouldResemble, []byte("hello"))
		})

		Convey("with no payload", func() {
			So(writeFrame(buf, msgBlobEnd, nil), ShouldBeNil)
			msgType, payload, err := readFrame(buf)
			So(err, ShouldBeNil)
			So(msgType, ShouldEqual, msgBlobEnd)
			So(len(payload), ShouldEqual, 0)
		})

		Convey("truncated header fails", func() {
			_, _, err := readFrame(bytes.NewReader([]byte{1, 2}))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestReadBlob(t *testing.T) {
	t.Parallel()

	Convey("readBlob concatenates chunks until blobEnd", t, func() {
		buf := &bytes.Buffer{}
		writeFrame(buf, msgBlobChunk, []byte("foo"))
		writeFrame(buf, msgBlobChunk, []byte("bar"))
		writeFrame(buf, msgBlobEnd, nil)

		got, err := readBlob(buf)
		So(err, ShouldBeNil)
		So(string(got), ShouldEqual, "foobar")
	})

	Convey("readBlob rejects an unexpected message type", t, func() {
		buf := &bytes.Buffer{}
		writeFrame(buf, msgGetFile, nil)
		_, err := readBlob(buf)
		So(err, ShouldNotBeNil)
	})
}
