// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depotdata

import (
	"bytes"
	"compress/zlib"
	"io"

	"go.chromium.org/luci/common/errors"
)

// Inflate decompresses a single zlib (RFC 1950) stream and returns exactly
// expected bytes of plaintext. It fails with ErrInflate if the stream is
// corrupt or yields a different number of bytes than expected.
func Inflate(stored []byte, expected int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(stored))
	if err != nil {
		return nil, errors.Annotate(ErrInflate).Reason("opening zlib stream: %(err)s").
			D("err", err).Err()
	}
	defer zr.Close()

	out := make([]byte, expected)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, errors.Annotate(ErrInflate).Reason("reading %(want)d bytes: %(err)s").
			D("want", expected).D("err", err).Err()
	}

	// The plaintext must end exactly where we expect; a single trailing byte
	// we didn't ask for indicates expected was wrong (truncated raw_length)
	// rather than a merely-oversized stream, so surface it as a hard error
	// instead of silently accepting a mismatched block.
	var extra [1]byte
	if n, _ := zr.Read(extra[:]); n != 0 {
		return nil, errors.Annotate(ErrInflate).Reason("stream longer than expected %(want)d bytes").
			D("want", expected).Err()
	}

	return out, nil
}
