// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depot

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/eepycats/steam2-extract/depotdata"
)

// ExtractResult summarizes one Extract call for the CLI to report.
type ExtractResult struct {
	Duration     time.Duration
	FilesWritten int
}

// Extract walks the Manifest tree, creates every directory, and writes the
// plaintext of every file entry (after the optional WithFilter) under
// WithOutputRoot. Work is distributed over a pool bounded to
// runtime.NumCPU(); files are independent so there is no ordering
// guarantee across tasks.
func (d *Depot) Extract(ctx context.Context) (*ExtractResult, error) {
	if d.Manifest == nil {
		return nil, errors.New("no manifest loaded; pass depot.WithManifest to Open")
	}
	if d.opts.outputRoot == "" {
		return nil, errors.New("no output root configured; use WithOutputRoot")
	}
	start := time.Now()

	root, err := filepath.Abs(d.opts.outputRoot)
	if err != nil {
		return nil, errors.Annotate(err).Reason("making abspath of output root").Err()
	}

	for i := range d.Manifest.Entries {
		e := &d.Manifest.Entries[i]
		if !e.IsDir() {
			continue
		}
		rel, err := d.Manifest.FullPath(e)
		if err != nil {
			return nil, errors.Annotate(err).Reason("resolving path of entry %(i)d").D("i", e.Index).Err()
		}
		abs := filepath.Join(root, depotdata.SanitizePathForMkdir(rel))
		if err := os.MkdirAll(abs, 0777); err != nil {
			return nil, errors.Annotate(err).Reason("making dir %(abs)q").D("abs", abs).Err()
		}
	}

	sem := semaphore.NewWeighted(int64(runtime.NumCPU()))
	wg := &sync.WaitGroup{}
	ech := make(chan error, 1)
	var written int64
	var fatalErr error

	go func() {
		defer close(ech)
		defer wg.Wait()

		for i := range d.Manifest.Entries {
			e := &d.Manifest.Entries[i]
			if e.IsDir() {
				continue
			}
			rel, err := d.Manifest.FullPath(e)
			if err != nil {
				ech <- err
				continue
			}
			if d.opts.filter != nil && !FullMatch(d.opts.filter, rel) {
				continue
			}
			abs := filepath.Join(root, depotdata.SanitizePathForMkdir(rel))

			if err := sem.Acquire(ctx, 1); err != nil {
				fatalErr = errors.Annotate(err).Reason("acquiring worker slot").Err()
				return
			}
			wg.Add(1)
			go func(entry *depotdata.DirEntry, abs string) {
				defer wg.Done()
				defer sem.Release(1)
				if err := d.extractOne(entry, abs); err != nil {
					ech <- errors.Annotate(err).Reason("extracting %(abs)q").D("abs", abs).Err()
					return
				}
				atomic.AddInt64(&written, 1)
			}(e, abs)
		}
	}()

	// Per-file failures are logged and counted but never abort the batch or
	// fail the command -- only fatalErr, set above when a worker slot can't
	// be acquired (e.g. ctx cancellation), is returned as an error.
	hadError := false
	for err := range ech {
		if err == nil {
			continue
		}
		if !hadError {
			logging.Errorf(ctx, "errors while extracting to %q:", root)
			hadError = true
		}
		logging.Errorf(ctx, "  %s", err)
	}

	result := &ExtractResult{Duration: time.Since(start), FilesWritten: int(written)}
	return result, fatalErr
}

func (d *Depot) extractOne(e *depotdata.DirEntry, abs string) error {
	f, err := os.Create(abs)
	if err != nil {
		return err
	}
	defer f.Close()
	return ExtractFile(f, d.storage, d.Index, e.FileID, d.Key)
}
