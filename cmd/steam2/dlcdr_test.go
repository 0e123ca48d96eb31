// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownloadCDRCommandBadAddr(t *testing.T) {
	cmd := NewDownloadCDRCommand()
	cmd.SetArgs([]string{"not-an-address"})
	require.Error(t, cmd.Execute())
}
