// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListRemoteCommandBadAddr(t *testing.T) {
	cmd := NewListRemoteCommand()
	cmd.SetArgs([]string{"not-an-address", "1", "2"})
	require.Error(t, cmd.Execute())
}

func TestListRemoteCommandBadDepotID(t *testing.T) {
	cmd := NewListRemoteCommand()
	cmd.SetArgs([]string{"127.0.0.1:1", "notanumber", "2"})
	require.Error(t, cmd.Execute())
}
