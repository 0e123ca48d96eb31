// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depotdata

import "go.chromium.org/luci/common/errors"

// Sentinel errors for the parser error kinds named in the depot format's
// design notes. Callers compare against these with errors.Is; every
// occurrence in this package is wrapped with errors.Annotate to attach a
// call-chain-specific reason before it reaches the caller.
var (
	// ErrTruncated means a read exceeded the bounds of the buffer being
	// decoded.
	ErrTruncated = errors.New("truncated")

	// ErrBadSeek means a Seek target was negative or past the end of the
	// buffer.
	ErrBadSeek = errors.New("bad seek")

	// ErrBadMagic means a file's magic bytes didn't match what this package
	// expects for that file kind.
	ErrBadMagic = errors.New("bad magic")

	// ErrUnsupportedVersion means a file declared a version newer than this
	// package knows how to decode.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrCycleDetected means a Manifest's parent-pointer chain didn't reach
	// the root within item_count hops.
	ErrCycleDetected = errors.New("cycle detected in manifest tree")

	// ErrUnknownFileID means the Index has no entry for a file-id that
	// another depot file references (depot.Validate raises it for a file-id
	// the Checksum file has windows for).
	ErrUnknownFileID = errors.New("unknown file id")

	// ErrDecrypt means AES-CBC decryption failed (bad key or padding).
	ErrDecrypt = errors.New("decrypt error")

	// ErrInflate means zlib decompression failed or produced the wrong
	// number of bytes.
	ErrInflate = errors.New("inflate error")
)
