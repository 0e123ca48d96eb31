// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depot

import (
	"os"
	"regexp"

	"go.chromium.org/luci/common/errors"

	"github.com/eepycats/steam2-extract/depotdata"
)

// Depot is a fully opened depot: its decoded Manifest, Index and (optional)
// Checksum, an open Storage blob, and the resolved AES key.
type Depot struct {
	Manifest *depotdata.Manifest // nil if no manifest was supplied
	Index    *depotdata.Index
	Checksum *depotdata.Checksum // nil if no checksum file was supplied

	Key       []byte
	KeySource KeySource

	storage      StorageBlob
	opts         openOptionData
	fileIDToPath map[uint32]string // populated only when Manifest is non-nil
}

// resolvePath returns the Manifest-resolved path for fileid, or "" if no
// manifest was loaded or it doesn't enumerate fileid.
func (d *Depot) resolvePath(fileid uint32) string {
	return d.fileIDToPath[fileid]
}

// Close releases the Storage blob's underlying handle (and mapping, on
// platforms that mmap it).
func (d *Depot) Close() error {
	return d.storage.Close()
}

type openOptionData struct {
	manifestPath string
	cacheID      *uint32
	indexVersion depotdata.IndexVersion
	keystore     *Keystore
	keyHex       string
	filter       *regexp.Regexp
	outputRoot   string
	onlyBad      bool
}

// OpenOption functions configure Open.
type OpenOption func(*openOptionData)

// WithManifest supplies a Manifest to decode alongside the Index and
// Storage blob. Extract requires one; Validate does not -- it only uses a
// loaded Manifest opportunistically, to resolve a display path for each
// fileid it checks.
func WithManifest(path string) OpenOption {
	return func(o *openOptionData) { o.manifestPath = path }
}

// WithCacheID overrides the cacheid used to resolve the decryption key and
// to consult the keystore, for callers that have no manifest (or whose
// manifest's own cacheid doesn't match the id their key is filed under).
func WithCacheID(id uint32) OpenOption {
	return func(o *openOptionData) { o.cacheID = &id }
}

// WithIndexVersion selects which Index dialect to decode. Defaults to
// depotdata.IndexV3.
func WithIndexVersion(v depotdata.IndexVersion) OpenOption {
	return func(o *openOptionData) { o.indexVersion = v }
}

// WithKeystore supplies a parsed Keystore to consult before falling back to
// WithKeyHex or the zero key.
func WithKeystore(ks *Keystore) OpenOption {
	return func(o *openOptionData) { o.keystore = ks }
}

// WithKeyHex supplies a hex-encoded 16-byte key to use when the keystore
// has no entry for this depot's cacheid.
func WithKeyHex(hexKey string) OpenOption {
	return func(o *openOptionData) { o.keyHex = hexKey }
}

// WithFilter restricts extraction and validation to entries whose
// full path fully matches re.
func WithFilter(re *regexp.Regexp) OpenOption {
	return func(o *openOptionData) { o.filter = re }
}

// WithOutputRoot sets the directory extraction writes into. Required by
// Extract; ignored by Validate.
func WithOutputRoot(root string) OpenOption {
	return func(o *openOptionData) { o.outputRoot = root }
}

// WithOnlyBad suppresses "OK" lines during Validate, printing only
// checksum mismatches.
func WithOnlyBad(v bool) OpenOption {
	return func(o *openOptionData) { o.onlyBad = v }
}

// Open reads and decodes indexPath, opens storagePath for positional
// reads, and -- if checksumPath is non-empty -- decodes the Checksum file
// too. If WithManifest is given, it decodes that Manifest as well; Extract
// requires one, but Validate does not. It resolves the AES key for the
// depot's cacheid via the three-tier keystore/flag/zero policy documented
// on ResolveKey; the cacheid itself comes from WithCacheID if given,
// otherwise from the Manifest header, otherwise zero.
func Open(indexPath, storagePath, checksumPath string, options ...OpenOption) (*Depot, error) {
	opts := openOptionData{
		indexVersion: depotdata.IndexV3,
	}
	for _, o := range options {
		o(&opts)
	}

	var manifest *depotdata.Manifest
	var fileIDToPath map[uint32]string
	if opts.manifestPath != "" {
		manifestBuf, err := os.ReadFile(opts.manifestPath)
		if err != nil {
			return nil, errors.Annotate(err).Reason("reading manifest").Err()
		}
		if manifest, err = depotdata.ParseManifest(manifestBuf); err != nil {
			return nil, errors.Annotate(err).Reason("parsing manifest").Err()
		}
		if err := manifest.ValidateTree(); err != nil {
			return nil, errors.Annotate(err).Reason("validating manifest tree").Err()
		}

		fileIDToPath = make(map[uint32]string, manifest.Header.FileCount)
		for i := range manifest.Entries {
			e := &manifest.Entries[i]
			if e.IsDir() {
				continue
			}
			rel, err := manifest.FullPath(e)
			if err != nil {
				return nil, errors.Annotate(err).Reason("resolving path of entry %(i)d").D("i", e.Index).Err()
			}
			fileIDToPath[e.FileID] = rel
		}
	}

	indexBuf, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, errors.Annotate(err).Reason("reading index").Err()
	}
	index, err := depotdata.ParseIndex(indexBuf, opts.indexVersion)
	if err != nil {
		return nil, errors.Annotate(err).Reason("parsing index").Err()
	}

	var checksum *depotdata.Checksum
	if checksumPath != "" {
		checksumBuf, err := os.ReadFile(checksumPath)
		if err != nil {
			return nil, errors.Annotate(err).Reason("reading checksum file").Err()
		}
		if checksum, err = depotdata.ParseChecksum(checksumBuf); err != nil {
			return nil, errors.Annotate(err).Reason("parsing checksum file").Err()
		}
	}

	storage, err := openStorage(storagePath)
	if err != nil {
		return nil, errors.Annotate(err).Reason("opening storage blob").Err()
	}

	var cacheID uint32
	if manifest != nil {
		cacheID = manifest.Header.CacheID
	}
	if opts.cacheID != nil {
		cacheID = *opts.cacheID
	}

	key, keySource, err := ResolveKey(opts.keystore, cacheID, opts.keyHex)
	if err != nil {
		storage.Close()
		return nil, errors.Annotate(err).Reason("resolving key").Err()
	}

	return &Depot{
		Manifest:     manifest,
		Index:        index,
		Checksum:     checksum,
		Key:          key,
		KeySource:    keySource,
		storage:      storage,
		opts:         opts,
		fileIDToPath: fileIDToPath,
	}, nil
}
