// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package steam2net

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"net"

	"golang.org/x/time/rate"

	"go.chromium.org/luci/common/errors"

	"github.com/eepycats/steam2-extract/depotdata"
)

// FileChunk is one raw block of a file as returned by FileClient.GetFile:
// Data may still need decryption and/or inflation, exactly like a local
// Storage block. RawLength is the plaintext length, needed to validate
// and truncate after inflation -- without it a network chunk can't feed
// depot.HandleChunk the way a local depotdata.Block does.
type FileChunk struct {
	Data      []byte
	RawLength uint32
}

// FileClient holds a session against one content server for one
// depot/version, and throttles outbound requests so a single client can't
// hammer the server.
type FileClient struct {
	conn    net.Conn
	depot   uint32
	version uint32
	limiter *rate.Limiter
}

// FileClientOption configures NewFileClient.
type FileClientOption func(*FileClient)

// WithRateLimit overrides the default outbound request rate (10/s, burst
// 4).
func WithRateLimit(rps float64, burst int) FileClientOption {
	return func(c *FileClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewFileClient dials addr and opens a session for depot at version.
func NewFileClient(ctx context.Context, addr Addr, depot, version uint32, options ...FileClientOption) (*FileClient, error) {
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return nil, errors.Annotate(err).Reason("dialing content server %(addr)s").D("addr", addr).Err()
	}
	c := &FileClient{
		conn:    conn,
		depot:   depot,
		version: version,
		limiter: rate.NewLimiter(10, 4),
	}
	for _, o := range options {
		o(c)
	}
	return c, nil
}

// Close closes the underlying connection.
func (c *FileClient) Close() error {
	return c.conn.Close()
}

func (c *FileClient) throttle(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Annotate(err).Reason("rate limit wait").Err()
	}
	return nil
}

// DownloadManifest fetches and decodes this session's depot's Manifest.
func (c *FileClient) DownloadManifest(ctx context.Context) (*depotdata.Manifest, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}
	if err := writeFrame(c.conn, msgDownloadManifest, c.depotHeader()); err != nil {
		return nil, err
	}
	blob, err := readBlob(c.conn)
	if err != nil {
		return nil, errors.Annotate(err).Reason("downloading manifest").Err()
	}
	return depotdata.ParseManifest(blob)
}

// DownloadChecksums fetches and decodes this session's depot's Checksum
// file.
func (c *FileClient) DownloadChecksums(ctx context.Context) (*depotdata.Checksum, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}
	if err := writeFrame(c.conn, msgDownloadChecksums, c.depotHeader()); err != nil {
		return nil, err
	}
	blob, err := readBlob(c.conn)
	if err != nil {
		return nil, errors.Annotate(err).Reason("downloading checksums").Err()
	}
	return depotdata.ParseChecksum(blob)
}

// GetFile fetches numChunks raw chunks for fileid. Each returned chunk
// still needs depot.HandleChunk applied with the returned FileType, the
// same as a local Storage block.
func (c *FileClient) GetFile(ctx context.Context, fileid uint32, numChunks uint32) ([]FileChunk, depotdata.FileType, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, 0, err
	}

	req := make([]byte, 16)
	copy(req, c.depotHeader())
	binary.LittleEndian.PutUint32(req[8:12], fileid)
	binary.LittleEndian.PutUint32(req[12:16], numChunks)
	if err := writeFrame(c.conn, msgGetFile, req); err != nil {
		return nil, 0, err
	}

	msgType, payload, err := readFrame(c.conn)
	if err != nil {
		return nil, 0, err
	}
	if msgType != msgGetFileResp || len(payload) < 1 {
		return nil, 0, errors.Reason("unexpected response type %(t)d to get_file").D("t", msgType).Err()
	}
	ftype := depotdata.FileType(payload[0])

	chunks := make([]FileChunk, 0, numChunks)
	for {
		msgType, payload, err := readFrame(c.conn)
		if err != nil {
			return nil, 0, err
		}
		switch msgType {
		case msgFileChunk:
			if len(payload) < 4+md5.Size {
				return nil, 0, errors.Reason("file chunk frame shorter than its length+digest prefix").Err()
			}
			rawLength := binary.LittleEndian.Uint32(payload[:4])
			var wantSum [md5.Size]byte
			copy(wantSum[:], payload[4:4+md5.Size])
			data := payload[4+md5.Size:]
			if gotSum := depotdata.MD5Sum(data); gotSum != wantSum {
				return nil, 0, errors.Reason("chunk for file %(id)d failed md5 verification").D("id", fileid).Err()
			}
			chunks = append(chunks, FileChunk{RawLength: rawLength, Data: data})
		case msgBlobEnd:
			return chunks, ftype, nil
		default:
			return nil, 0, errors.Reason("unexpected message type %(t)d while streaming file").D("t", msgType).Err()
		}
	}
}

func (c *FileClient) depotHeader() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], c.depot)
	binary.LittleEndian.PutUint32(buf[4:8], c.version)
	return buf
}
