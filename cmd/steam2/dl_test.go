// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownloadCommandBadAddr(t *testing.T) {
	cmd := NewDownloadCommand()
	cmd.SetArgs([]string{"not-an-address", "1", "2"})
	require.Error(t, cmd.Execute())
}

func TestDownloadCommandBadVersion(t *testing.T) {
	cmd := NewDownloadCommand()
	cmd.SetArgs([]string{"127.0.0.1:1", "1", "notanumber"})
	require.Error(t, cmd.Execute())
}

func TestDownloadCommandRateFlagParses(t *testing.T) {
	cmd := NewDownloadCommand()
	cmd.SetArgs([]string{"--rate", "5", "--skipcls", "127.0.0.1:1", "1", "2"})
	// Dialing 127.0.0.1:1 fails, but that's after flag parsing succeeds --
	// this only exercises that --rate is accepted and doesn't panic the
	// FileClientOption wiring.
	require.Error(t, cmd.Execute())
}
