// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"go.chromium.org/luci/common/errors"

	"github.com/eepycats/steam2-extract/steam2net"
)

// NewDownloadCDRCommand builds "steam2 dlcdr", which fetches a content
// server's content-description-record blob to ./cdr.bin.
func NewDownloadCDRCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlcdr <ip:port>",
		Short: "Download a content server's CDR blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := steam2net.ParseAddr(args[0])
			if err != nil {
				return err
			}

			f, err := os.Create("cdr.bin")
			if err != nil {
				return errors.Annotate(err).Reason("creating cdr.bin").Err()
			}
			defer f.Close()

			return steam2net.DownloadCDR(context.Background(), addr, f)
		},
	}
	return cmd
}
