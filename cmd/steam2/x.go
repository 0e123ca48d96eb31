// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"go.chromium.org/luci/common/errors"

	"github.com/eepycats/steam2-extract/depot"
	"github.com/eepycats/steam2-extract/depotdata"
)

// NewExtractCommand builds "steam2 x", which unpacks a local depot's
// Storage blob to disk.
func NewExtractCommand() *cobra.Command {
	var keys keyFlags
	var v2 bool
	var out string
	var filter string

	cmd := &cobra.Command{
		Use:   "x <storage> <manifest> <index>",
		Short: "Extract a depot's files to disk",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			storagePath, manifestPath, indexPath := args[0], args[1], args[2]

			ks, err := loadKeystore(keys.keystorePath)
			if err != nil {
				return err
			}

			if out == "" {
				manifestBuf, err := os.ReadFile(manifestPath)
				if err != nil {
					return errors.Annotate(err).Reason("reading manifest").Err()
				}
				peek, err := depotdata.ParseManifest(manifestBuf)
				if err != nil {
					return errors.Annotate(err).Reason("parsing manifest").Err()
				}
				out = fmt.Sprintf("./%d_%d", peek.Header.CacheID, peek.Header.GCFVersion)
			}

			opts := []depot.OpenOption{
				depot.WithManifest(manifestPath),
				depot.WithKeystore(ks),
				depot.WithKeyHex(keys.keyHex),
				depot.WithOutputRoot(out),
			}
			if v2 {
				opts = append(opts, depot.WithIndexVersion(depotdata.IndexV2))
			}
			if filter != "" {
				re, err := regexp.Compile(filter)
				if err != nil {
					return errors.Annotate(err).Reason("compiling --filter").Err()
				}
				opts = append(opts, depot.WithFilter(re))
			}

			d, err := depot.Open(indexPath, storagePath, "", opts...)
			if err != nil {
				return err
			}
			defer d.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "key source: %s\n", d.KeySource)

			result, err := d.Extract(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "extracted %d files in %s\n", result.FilesWritten, result.Duration)
			return nil
		},
	}

	keys.register(cmd.Flags())
	cmd.Flags().BoolVar(&v2, "v2", false, "treat the index as the v2 dialect instead of v3")
	cmd.Flags().StringVar(&out, "out", "", "output directory (default: ./<cacheid>_<version>)")
	cmd.Flags().StringVar(&filter, "filter", "", "only extract paths fully matching this regex")

	return cmd
}
