// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/eepycats/steam2-extract/steam2net"
)

// NewListRemoteCommand builds "steam2 lsr", the network equivalent of ls:
// it asks a directory server for content servers, picks one, and lists the
// manifest it serves.
func NewListRemoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsr <directory ip:port> <depot> <version>",
		Short: "List files in a depot's manifest (fetched over the network)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			dirAddr, err := steam2net.ParseAddr(args[0])
			if err != nil {
				return err
			}
			depotID, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return err
			}
			version, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return err
			}

			servers, err := steam2net.GetFileServers(ctx, dirAddr, uint32(depotID), uint32(version), 2)
			if err != nil {
				return err
			}
			for _, s := range servers {
				fmt.Fprintf(out, "%s\n", s)
			}
			if len(servers) < 2 {
				return fmt.Errorf("directory server returned %d content servers, need at least 2", len(servers))
			}

			fc, err := steam2net.NewFileClient(ctx, servers[1], uint32(depotID), uint32(version))
			if err != nil {
				return err
			}
			defer fc.Close()

			m, err := fc.DownloadManifest(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "File list for cache %d version %d:\n", m.Header.CacheID, m.Header.GCFVersion)
			for i := range m.Entries {
				name, err := m.FullPath(&m.Entries[i])
				if err != nil {
					return err
				}
				if name == "" {
					continue
				}
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
	return cmd
}
