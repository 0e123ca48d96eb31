// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package steam2net

import (
	"context"
	"io"
	"net"

	"go.chromium.org/luci/common/errors"
)

// DownloadCDR fetches the opaque content-description-record blob from the
// content server at addr and writes it verbatim to sink.
func DownloadCDR(ctx context.Context, addr Addr, sink io.Writer) error {
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return errors.Annotate(err).Reason("dialing content server %(addr)s").D("addr", addr).Err()
	}
	defer conn.Close()

	if err := writeFrame(conn, msgDownloadCDR, nil); err != nil {
		return err
	}
	blob, err := readBlob(conn)
	if err != nil {
		return errors.Annotate(err).Reason("downloading cdr").Err()
	}
	if _, err := sink.Write(blob); err != nil {
		return errors.Annotate(err).Reason("writing cdr to sink").Err()
	}
	return nil
}
