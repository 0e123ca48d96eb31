// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package steam2net

import (
	"bytes"
	"encoding/binary"
	"io"

	"go.chromium.org/luci/common/errors"
)

// Every message on the wire is a 1-byte type tag, a little-endian uint32
// payload length, then the payload itself.
const frameHeaderSize = 5

// Message types. Requests are sent by the client; responses by the server.
const (
	msgGetFileServers     byte = 1
	msgFileServersResp    byte = 2
	msgDownloadCDR        byte = 3
	msgDownloadManifest   byte = 4
	msgDownloadChecksums  byte = 5
	msgGetFile            byte = 6
	msgGetFileResp        byte = 7 // payload[0] is the file's FileType
	msgFileChunk          byte = 8 // payload is raw_length(4) || md5(16) || chunk bytes
	msgBlobChunk          byte = 9 // a chunk of a streamed response (CDR, manifest, checksum)
	msgBlobEnd            byte = 10 // terminates a streamed response (CDR/manifest/checksum/file)
)

// writeFrame writes one message to w.
func writeFrame(w io.Writer, msgType byte, payload []byte) error {
	header := make([]byte, frameHeaderSize)
	header[0] = msgType
	binary.LittleEndian.PutUint32(header[1:], uint32(len(payload)))
	if _, err := w.Write(header); err != nil {
		return errors.Annotate(err).Reason("writing frame header").Err()
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return errors.Annotate(err).Reason("writing frame payload").Err()
		}
	}
	return nil
}

// readFrame reads one message from r.
func readFrame(r io.Reader) (msgType byte, payload []byte, err error) {
	header := make([]byte, frameHeaderSize)
	if _, err = io.ReadFull(r, header); err != nil {
		return 0, nil, errors.Annotate(err).Reason("reading frame header").Err()
	}
	msgType = header[0]
	length := binary.LittleEndian.Uint32(header[1:])
	payload = make([]byte, length)
	if length > 0 {
		if _, err = io.ReadFull(r, payload); err != nil {
			return 0, nil, errors.Annotate(err).Reason("reading frame payload").Err()
		}
	}
	return msgType, payload, nil
}

// readBlob reads a streamed response: zero or more msgBlobChunk frames
// followed by a msgBlobEnd frame, and returns the concatenated payload.
func readBlob(r io.Reader) ([]byte, error) {
	buf := &bytes.Buffer{}
	for {
		msgType, payload, err := readFrame(r)
		if err != nil {
			return nil, err
		}
		switch msgType {
		case msgBlobChunk:
			buf.Write(payload)
		case msgBlobEnd:
			return buf.Bytes(), nil
		default:
			return nil, errors.Reason("unexpected message type %(t)d while streaming blob").D("t", msgType).Err()
		}
	}
}
