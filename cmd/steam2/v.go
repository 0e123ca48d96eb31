// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/eepycats/steam2-extract/depot"
)

// NewValidateCommand builds "steam2 v", which re-extracts every file with
// recorded checksum windows and reports any mismatches.
func NewValidateCommand() *cobra.Command {
	var keys keyFlags
	var cacheIDStr string
	var onlyBad bool

	cmd := &cobra.Command{
		Use:   "v <storage> <index> <checksum>",
		Short: "Validate a depot's files against its checksum file",
		Long: "Validate re-extracts every file with recorded checksum windows and reports\n" +
			"mismatches. It takes no manifest -- like the original tool, it walks the\n" +
			"Checksum file's own fileid map -- so mismatch and OK lines report the raw\n" +
			"fileid rather than a resolved path.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			storagePath, indexPath, checksumPath := args[0], args[1], args[2]

			ks, err := loadKeystore(keys.keystorePath)
			if err != nil {
				return err
			}

			opts := []depot.OpenOption{
				depot.WithKeystore(ks),
				depot.WithKeyHex(keys.keyHex),
				depot.WithOnlyBad(onlyBad),
			}
			// --cacheid selects which cacheid the keystore is consulted
			// under; with no manifest to supply one, it otherwise defaults
			// to zero.
			if cacheIDStr != "" {
				cacheID, err := strconv.ParseUint(cacheIDStr, 10, 32)
				if err != nil {
					return err
				}
				opts = append(opts, depot.WithCacheID(uint32(cacheID)))
			}

			d, err := depot.Open(indexPath, storagePath, checksumPath, opts...)
			if err != nil {
				return err
			}
			defer d.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "validating cache %s (key source: %s)\n", storagePath, d.KeySource)

			result, err := d.Validate(context.Background(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d files, %d bad windows, took %s\n",
				result.FilesChecked, result.BadWindows, result.Duration)
			return nil
		},
	}

	keys.register(cmd.Flags())
	cmd.Flags().StringVar(&cacheIDStr, "cacheid", "", "cacheid for keystore lookup (default: 0)")
	cmd.Flags().BoolVar(&onlyBad, "onlybad", false, "show only bad parts")

	return cmd
}
