// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build windows

package depot

import (
	"os"

	"go.chromium.org/luci/common/errors"

	"github.com/eepycats/steam2-extract/depotdata"
)

// fileStorage is a StorageBlob backed by plain positional reads, used on
// platforms without the posix mmap primitives storage_unix.go relies on.
// Reads are offset by the storage header size, same as mmapStorage's
// payload slice.
type fileStorage struct {
	f *os.File
}

func (s *fileStorage) ReadAt(p []byte, off int64) (int, error) {
	n, err := s.f.ReadAt(p, off+depotdata.StorageHeaderSize)
	if err != nil {
		return n, errors.Annotate(err).Reason("reading storage blob at %(off)d").D("off", off).Err()
	}
	return n, nil
}

func (s *fileStorage) Close() error {
	return s.f.Close()
}

// openStorage opens path for positional reads and validates its header.
func openStorage(path string) (StorageBlob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotate(err).Reason("opening storage blob").Err()
	}
	header := make([]byte, depotdata.StorageHeaderSize)
	if _, err := f.ReadAt(header, 0); err != nil {
		f.Close()
		return nil, errors.Annotate(err).Reason("reading storage blob header").Err()
	}
	if _, err := depotdata.ParseStorageHeader(header); err != nil {
		f.Close()
		return nil, errors.Annotate(err).Reason("validating storage blob header").Err()
	}
	return &fileStorage{f: f}, nil
}
