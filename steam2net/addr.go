// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package steam2net

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"go.chromium.org/luci/common/errors"
)

// Addr is a content/directory server's IPv4 address and port, the unit
// get_fileservers exchanges on the wire.
type Addr struct {
	IP   net.IP
	Port uint16
}

// String renders addr as "ip:port".
func (a Addr) String() string {
	return fmt.Sprintf("%s:%d", a.IP, a.Port)
}

// ParseAddr parses an "ip:port" string, the form the CLI accepts on the
// command line for dl's and lsr's directory-server argument and dlcdr's
// target.
func ParseAddr(s string) (Addr, error) {
	host, portStr, ok := strings.Cut(s, ":")
	if !ok {
		return Addr{}, errors.Reason("address %(s)q missing \":port\"").D("s", s).Err()
	}
	ip := net.ParseIP(host).To4()
	if ip == nil {
		return Addr{}, errors.Reason("address %(s)q has no valid IPv4 host").D("s", s).Err()
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Addr{}, errors.Annotate(err).Reason("parsing port in %(s)q").D("s", s).Err()
	}
	return Addr{IP: ip, Port: uint16(port)}, nil
}

// unmarshalAddr decodes one server record: 4 bytes of IPv4 followed by a
// little-endian uint16 port, the wire shape get_fileservers' response
// repeats once per server.
func unmarshalAddr(buf []byte) (Addr, error) {
	if len(buf) < 6 {
		return Addr{}, errors.Reason("address record shorter than 6 bytes").Err()
	}
	ip := net.IPv4(buf[0], buf[1], buf[2], buf[3])
	port := uint16(buf[4]) | uint16(buf[5])<<8
	return Addr{IP: ip, Port: port}, nil
}
