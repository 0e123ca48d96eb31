// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depot

import (
	"io"

	"go.chromium.org/luci/common/errors"

	"github.com/eepycats/steam2-extract/depotdata"
)

// StorageBlob is the read-only, concurrency-safe positional-read primitive
// extraction and validation pull raw chunk bytes from. storage_unix.go
// backs it with a read-only mmap; storage_other.go falls back to
// *os.File.ReadAt.
type StorageBlob interface {
	ReadAt(p []byte, off int64) (int, error)
	io.Closer
}

// HandleChunk decrypts (if ftype is encrypted) and inflates (if ftype is
// compressed) one block's raw bytes and writes the result -- truncated to
// rawLength -- to sink. lastBlock must be true only for a file's final
// block: PKCS#7 padding is stripped there and nowhere else.
func HandleChunk(sink io.Writer, ftype depotdata.FileType, chunk []byte, rawLength uint32, key []byte, lastBlock bool) error {
	raw := chunk
	var err error

	if ftype.Encrypted() {
		if raw, err = depotdata.DecryptCBC(key, raw, lastBlock); err != nil {
			return errors.Annotate(err).Reason("decrypting chunk").Err()
		}
	}
	if ftype.Compressed() {
		if raw, err = depotdata.Inflate(raw, int(rawLength)); err != nil {
			return errors.Annotate(err).Reason("inflating chunk").Err()
		}
	}
	if uint32(len(raw)) > rawLength {
		raw = raw[:rawLength]
	}
	if _, err := sink.Write(raw); err != nil {
		return errors.Annotate(err).Reason("writing chunk").Err()
	}
	return nil
}

// ExtractFile writes fileid's decoded plaintext to out. A fileid absent
// from idx, or present with zero blocks, is not an error -- it just writes
// nothing.
func ExtractFile(out io.Writer, storage StorageBlob, idx *depotdata.Index, fileid uint32, key []byte) error {
	fl, ok := idx.Lookup(fileid)
	if !ok || len(fl.Blocks) == 0 {
		return nil
	}

	for i, b := range fl.Blocks {
		raw := make([]byte, b.StoredLength)
		if _, err := storage.ReadAt(raw, int64(b.StorageOffset)); err != nil {
			return errors.Annotate(err).Reason("reading block %(i)d of fileid %(id)d").
				D("i", i).D("id", fileid).Err()
		}
		lastBlock := i == len(fl.Blocks)-1
		if err := HandleChunk(out, fl.Type, raw, b.RawLength, key, lastBlock); err != nil {
			return errors.Annotate(err).Reason("handling block %(i)d of fileid %(id)d").
				D("i", i).D("id", fileid).Err()
		}
	}
	return nil
}
