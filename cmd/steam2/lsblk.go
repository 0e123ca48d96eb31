// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"go.chromium.org/luci/common/errors"

	"github.com/eepycats/steam2-extract/depotdata"
)

// NewLsBlkCommand builds "steam2 lsblk", which lists every fileid an Index
// knows about and, unless --onlyid is set, its FileType.
func NewLsBlkCommand() *cobra.Command {
	var v2 bool
	var onlyID bool

	cmd := &cobra.Command{
		Use:   "lsblk <index>",
		Short: "List fileids and their block types in an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Annotate(err).Reason("reading index").Err()
			}
			version := depotdata.IndexV3
			if v2 {
				version = depotdata.IndexV2
			}
			idx, err := depotdata.ParseIndex(buf, version)
			if err != nil {
				return errors.Annotate(err).Reason("parsing index").Err()
			}

			ids := idx.FileIDs()
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

			out := cmd.OutOrStdout()
			for _, id := range ids {
				if onlyID {
					fmt.Fprintln(out, id)
					continue
				}
				fl, _ := idx.Lookup(id)
				fmt.Fprintf(out, "%d | %s\n", id, fl.Type)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&v2, "v2", false, "treat the index as the v2 dialect instead of v3")
	cmd.Flags().BoolVar(&onlyID, "onlyid", false, "show only fileids")

	return cmd
}
