// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package steam2net

import (
	"context"
	"encoding/binary"
	"net"

	"go.chromium.org/luci/common/errors"
)

// GetFileServers asks the directory server at directoryAddr for count
// content-server addresses serving depot at version.
func GetFileServers(ctx context.Context, directoryAddr Addr, depot, version uint32, count int) ([]Addr, error) {
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", directoryAddr.String())
	if err != nil {
		return nil, errors.Annotate(err).Reason("dialing directory server %(addr)s").D("addr", directoryAddr).Err()
	}
	defer conn.Close()

	req := make([]byte, 12)
	binary.LittleEndian.PutUint32(req[0:4], depot)
	binary.LittleEndian.PutUint32(req[4:8], version)
	binary.LittleEndian.PutUint32(req[8:12], uint32(count))
	if err := writeFrame(conn, msgGetFileServers, req); err != nil {
		return nil, err
	}

	msgType, payload, err := readFrame(conn)
	if err != nil {
		return nil, err
	}
	if msgType != msgFileServersResp {
		return nil, errors.Reason("unexpected response type %(t)d to get_fileservers").D("t", msgType).Err()
	}
	if len(payload)%6 != 0 {
		return nil, errors.Reason("fileservers response length %(n)d not a multiple of 6").D("n", len(payload)).Err()
	}

	servers := make([]Addr, 0, len(payload)/6)
	for off := 0; off < len(payload); off += 6 {
		addr, err := unmarshalAddr(payload[off : off+6])
		if err != nil {
			return nil, err
		}
		servers = append(servers, addr)
	}
	return servers, nil
}
