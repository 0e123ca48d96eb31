// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.chromium.org/luci/common/errors"

	"github.com/eepycats/steam2-extract/depotdata"
)

// NewListCommand builds "steam2 ls", which prints every non-empty resolved
// path in a Manifest.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls <manifest>",
		Short: "List files in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Annotate(err).Reason("reading manifest").Err()
			}
			m, err := depotdata.ParseManifest(buf)
			if err != nil {
				return errors.Annotate(err).Reason("parsing manifest").Err()
			}

			out := cmd.OutOrStdout()
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
