// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadKeystoreEmpty(t *testing.T) {
	ks, err := loadKeystore("")
	require.NoError(t, err)
	require.Nil(t, ks)
}

func TestLoadKeystoreFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.txt")
	require.NoError(t, os.WriteFile(path, []byte("1234 00112233445566778899aabbccddee\n"), 0644))

	ks, err := loadKeystore(path)
	require.NoError(t, err)
	require.NotNil(t, ks)
	require.True(t, ks.HasKey(1234))
}

func TestLoadKeystoreMissingFile(t *testing.T) {
	_, err := loadKeystore(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
