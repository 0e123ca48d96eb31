// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !windows

package depot

import (
	"os"

	"golang.org/x/sys/unix"

	"go.chromium.org/luci/common/errors"

	"github.com/eepycats/steam2-extract/depotdata"
)

// mmapStorage is a StorageBlob backed by a read-only, shared memory mapping
// of the Storage file. mapped is the whole file; payload is mapped sliced
// past the storage header, which is what Block.StorageOffset is relative
// to.
type mmapStorage struct {
	f       *os.File
	mapped  []byte
	payload []byte
}

func (s *mmapStorage) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(s.payload)) {
		return 0, errors.Reason("offset %(off)d out of range").D("off", off).Err()
	}
	n := copy(p, s.payload[off:])
	if n < len(p) {
		return n, errors.Reason("short read at offset %(off)d: wanted %(want)d got %(got)d").
			D("off", off).D("want", len(p)).D("got", n).Err()
	}
	return n, nil
}

func (s *mmapStorage) Close() error {
	if s.mapped != nil {
		if err := unix.Munmap(s.mapped); err != nil {
			return errors.Annotate(err).Reason("unmapping storage blob").Err()
		}
		s.mapped = nil
	}
	return s.f.Close()
}

// openStorage memory-maps path read-only and validates its header.
func openStorage(path string) (StorageBlob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotate(err).Reason("opening storage blob").Err()
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Annotate(err).Reason("statting storage blob").Err()
	}
	if st.Size() < depotdata.StorageHeaderSize {
		f.Close()
		return nil, errors.Reason("storage blob shorter than its header").Err()
	}
	mapped, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Annotate(err).Reason("mmapping storage blob").Err()
	}
	if _, err := depotdata.ParseStorageHeader(mapped[:depotdata.StorageHeaderSize]); err != nil {
		unix.Munmap(mapped)
		f.Close()
		return nil, errors.Annotate(err).Reason("validating storage blob header").Err()
	}
	return &mmapStorage{f: f, mapped: mapped, payload: mapped[depotdata.StorageHeaderSize:]}, nil
}
