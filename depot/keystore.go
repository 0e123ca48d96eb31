// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depot

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"go.chromium.org/luci/common/errors"

	"github.com/eepycats/steam2-extract/depotdata"
)

// Keystore is the parsed contents of a plaintext `cacheid<WS>hexkey` key
// file: blank lines and lines starting with '#' are skipped, the same
// comment-tolerant convention a hand-edited ignore file uses.
type Keystore struct {
	keys map[uint32]string
}

// HasKey reports whether cacheid has an entry in the keystore.
func (k *Keystore) HasKey(cacheid uint32) bool {
	_, ok := k.keys[cacheid]
	return ok
}

// Get returns the hex key text for cacheid, if present.
func (k *Keystore) Get(cacheid uint32) (string, bool) {
	hexKey, ok := k.keys[cacheid]
	return hexKey, ok
}

// LoadKeystore parses a keystore file from r.
func LoadKeystore(r io.Reader) (*Keystore, error) {
	keys := make(map[uint32]string)
	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errors.Reason("keystore line %(n)d: expected \"cacheid hexkey\", got %(line)q").
				D("n", lineNo).D("line", line).Err()
		}
		cacheid, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, errors.Annotate(err).Reason("keystore line %(n)d: bad cacheid").D("n", lineNo).Err()
		}
		keys[uint32(cacheid)] = fields[1]
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Annotate(err).Reason("reading keystore").Err()
	}
	return &Keystore{keys: keys}, nil
}

// KeySource records where ResolveKey's returned key material came from, so
// callers can log provenance as spec requires.
type KeySource int

// The three tiers ResolveKey tries, in order.
const (
	KeySourceKeystore KeySource = iota
	KeySourceFlag
	KeySourceZero
)

// String renders the source the way the CLI logs it.
func (s KeySource) String() string {
	switch s {
	case KeySourceKeystore:
		return "keystore"
	case KeySourceFlag:
		return "--key"
	case KeySourceZero:
		return "zero-key"
	default:
		return "unknown"
	}
}

// ResolveKey picks the AES-256 key to use for cacheid: the keystore (if ks
// is non-nil and has an entry), else flagHex (if non-empty), else a
// zero-filled key. A missing keystore entry is not an error -- per spec.md
// §4.10, callers fall back silently.
func ResolveKey(ks *Keystore, cacheid uint32, flagHex string) ([]byte, KeySource, error) {
	if ks != nil {
		if hexKey, ok := ks.Get(cacheid); ok {
			raw, err := depotdata.DecodeHexKey(hexKey)
			if err != nil {
				return nil, KeySourceKeystore, errors.Annotate(err).
					Reason("decoding keystore key for cacheid %(id)d").D("id", cacheid).Err()
			}
			key, err := depotdata.ExpandKey(raw)
			return key, KeySourceKeystore, err
		}
	}
	if flagHex != "" {
		raw, err := depotdata.DecodeHexKey(flagHex)
		if err != nil {
			return nil, KeySourceFlag, errors.Annotate(err).Reason("decoding --key").Err()
		}
		key, err := depotdata.ExpandKey(raw)
		return key, KeySourceFlag, err
	}
	return make([]byte, depotdata.AESKeySize), KeySourceZero, nil
}
