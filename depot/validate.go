// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/eepycats/steam2-extract/depotdata"
)

// ValidateResult summarizes one Validate call for the CLI to report.
type ValidateResult struct {
	Duration     time.Duration
	FilesChecked int
	BadWindows   int
}

// Validate re-extracts every file entry with recorded checksum windows
// into memory, block-sums each 0x8000-byte window, and compares it against
// the Checksum file, writing one line per window to w (one mismatch or OK
// line, unless WithOnlyBad suppresses OK lines). Lines for distinct files
// may interleave, but each individual line is written atomically.
func (d *Depot) Validate(ctx context.Context, w io.Writer) (*ValidateResult, error) {
	if d.Checksum == nil {
		return nil, errors.New("no checksum file loaded; pass a checksum path to Open")
	}
	start := time.Now()

	var mu sync.Mutex
	var checked, bad int64

	sem := semaphore.NewWeighted(int64(runtime.NumCPU()))
	wg := &sync.WaitGroup{}
	ech := make(chan error, 1)
	var fatalErr error

	go func() {
		defer close(ech)
		defer wg.Wait()

		for fileid, entry := range d.Checksum.Map {
			if entry.Count == 0 {
				continue
			}
			rel := d.resolvePath(fileid)
			if d.opts.filter != nil && (rel == "" || !FullMatch(d.opts.filter, rel)) {
				continue
			}

			if err := sem.Acquire(ctx, 1); err != nil {
				fatalErr = errors.Annotate(err).Reason("acquiring worker slot").Err()
				return
			}
			wg.Add(1)
			go func(fileid uint32, rel string) {
				defer wg.Done()
				defer sem.Release(1)
				_, nbad, err := d.validateOne(fileid, rel, w, &mu)
				if err != nil {
					ech <- errors.Annotate(err).Reason("validating fileid %(id)d").D("id", fileid).Err()
					return
				}
				atomic.AddInt64(&checked, 1)
				atomic.AddInt64(&bad, int64(nbad))
			}(fileid, rel)
		}
	}()

	// Per-file failures (including a fileid the index has no entry for at
	// all) are logged and counted but never fail the command -- only
	// fatalErr, set above when a worker slot can't be acquired, is returned.
	hadError := false
	for err := range ech {
		if err == nil {
			continue
		}
		if !hadError {
			logging.Errorf(ctx, "errors while validating:")
			hadError = true
		}
		logging.Errorf(ctx, "  %s", err)
	}

	result := &ValidateResult{Duration: time.Since(start), FilesChecked: int(checked), BadWindows: int(bad)}
	return result, fatalErr
}

// validateOne checks one fileid's windows against the Checksum file,
// writing a line per window to w under mu. rel is the Manifest-resolved
// path, if any, used only to annotate the error returned when the index
// has no entry for fileid. It returns the number of windows checked and
// the number that mismatched.
func (d *Depot) validateOne(fileid uint32, rel string, w io.Writer, mu *sync.Mutex) (checked, bad int, err error) {
	// A fileid the Checksum file covers but the index has never heard of is
	// not the same thing as a file that legitimately extracts to zero bytes
	// (ExtractFile's own, more lenient rule) -- a checksum window recorded
	// for it is unvalidatable, so surface it as ErrUnknownFileID rather than
	// silently reporting zero checked windows.
	if _, ok := d.Index.Lookup(fileid); !ok {
		return 0, 0, errors.Annotate(depotdata.ErrUnknownFileID).
			Reason("fileid %(id)d (%(rel)q) has checksum windows but no index entry").
			D("id", fileid).D("rel", rel).Err()
	}

	buf := &bytes.Buffer{}
	if err := ExtractFile(buf, d.storage, d.Index, fileid, d.Key); err != nil {
		return 0, 0, err
	}
	data := buf.Bytes()

	windows := d.Checksum.Windows(fileid)
	for k, want := range windows {
		lo := k * depotdata.ChecksumWindowSize
		if lo >= len(data) {
			break
		}
		hi := lo + depotdata.ChecksumWindowSize
		if hi > len(data) {
			hi = len(data)
		}
		got := depotdata.BlockSum(data[lo:hi])

		mu.Lock()
		if got != want {
			bad++
			fmt.Fprintf(w, "Bad checksum for file %d: got %d expected %d\n", fileid, got, want)
		} else if !d.opts.onlyBad {
			fmt.Fprintf(w, "File %d part %d OK\n", fileid, k)
		}
		mu.Unlock()
	}
	return len(windows), bad, nil
}
