// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"go.chromium.org/luci/common/errors"

	"github.com/eepycats/steam2-extract/depotdata"
)

// NewItoNCommand builds "steam2 iton", which resolves a fileid to its
// manifest path.
func NewItoNCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iton <id> <manifest>",
		Short: "Resolve a fileid to its manifest path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return errors.Annotate(err).Reason("parsing id").Err()
			}

			buf, err := os.ReadFile(args[1])
			if err != nil {
				return errors.Annotate(err).Reason("reading manifest").Err()
			}
			m, err := depotdata.ParseManifest(buf)
			if err != nil {
				return errors.Annotate(err).Reason("parsing manifest").Err()
			}

			for i := range m.Entries {
				if m.Entries[i].FileID != uint32(id) {
					continue
				}
				name, err := m.FullPath(&m.Entries[i])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	return cmd
}
