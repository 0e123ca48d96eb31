// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"os"

	"go.chromium.org/luci/common/errors"

	"github.com/eepycats/steam2-extract/depot"
)

// loadKeystore opens and parses path, returning a nil *depot.Keystore (not
// an error) when path is empty.
func loadKeystore(path string) (*depot.Keystore, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotate(err).Reason("opening keystore").Err()
	}
	defer f.Close()
	return depot.LoadKeystore(f)
}
