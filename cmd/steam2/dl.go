// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/spf13/cobra"

	"go.chromium.org/luci/common/errors"

	"github.com/eepycats/steam2-extract/depot"
	"github.com/eepycats/steam2-extract/depotdata"
	"github.com/eepycats/steam2-extract/steam2net"
)

// NewDownloadCommand builds "steam2 dl", which fetches an entire depot from
// a content server and writes it to disk the same way Extract does locally.
func NewDownloadCommand() *cobra.Command {
	var keys keyFlags
	var out string
	var filter string
	var skipCLS bool
	var rate float64

	cmd := &cobra.Command{
		Use:   "dl <directory ip:port> <depot> <version>",
		Short: "Download a depot from a content server",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out2 := cmd.OutOrStdout()

			dirAddr, err := steam2net.ParseAddr(args[0])
			if err != nil {
				return err
			}
			depotID64, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return err
			}
			version64, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return err
			}
			depotID, version := uint32(depotID64), uint32(version64)

			ks, err := loadKeystore(keys.keystorePath)
			if err != nil {
				return err
			}
			key, keySource, err := depot.ResolveKey(ks, depotID, keys.keyHex)
			if err != nil {
				return err
			}
			fmt.Fprintf(out2, "key source: %s\n", keySource)

			var re *regexp.Regexp
			if filter != "" {
				if re, err = regexp.Compile(filter); err != nil {
					return errors.Annotate(err).Reason("compiling --filter").Err()
				}
			}

			contentAddr := dirAddr
			if !skipCLS {
				servers, err := steam2net.GetFileServers(ctx, dirAddr, depotID, version, 2)
				if err != nil {
					return err
				}
				for _, s := range servers {
					fmt.Fprintf(out2, "%s\n", s)
				}
				if len(servers) < 2 {
					return fmt.Errorf("directory server returned %d content servers, need at least 2", len(servers))
				}
				contentAddr = servers[1]
			}

			var fcOpts []steam2net.FileClientOption
			if rate > 0 {
				fcOpts = append(fcOpts, steam2net.WithRateLimit(rate, 4))
			}
			fc, err := steam2net.NewFileClient(ctx, contentAddr, depotID, version, fcOpts...)
			if err != nil {
				return err
			}
			defer fc.Close()

			m, err := fc.DownloadManifest(ctx)
			if err != nil {
				return err
			}
			checksum, err := fc.DownloadChecksums(ctx)
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("./%d_%d", depotID, version)
			}

			for i := range m.Entries {
				e := &m.Entries[i]

				rel, err := m.FullPath(e)
				if err != nil {
					return err
				}

				final := filepath.Join(out, depotdata.SanitizePathForMkdir(rel))

				if e.IsDir() {
					if err := os.MkdirAll(final, 0777); err != nil {
						return errors.Annotate(err).Reason("creating directory %(p)q").D("p", final).Err()
					}
					continue
				}

				if re != nil && !depot.FullMatch(re, rel) {
					continue
				}

				if err := os.MkdirAll(filepath.Dir(final), 0777); err != nil {
					return errors.Annotate(err).Reason("creating parent of %(p)q").D("p", final).Err()
				}

				f, err := os.Create(final)
				if err != nil {
					return errors.Annotate(err).Reason("creating %(p)q").D("p", final).Err()
				}
				fmt.Fprintf(out2, "downloading: %s\n", final)

				chunks, ftype, err := fc.GetFile(ctx, e.FileID, checksum.NumChecksums(e.FileID))
				if err != nil {
					f.Close()
					return errors.Annotate(err).Reason("fetching fileid %(id)d").D("id", e.FileID).Err()
				}
				for j, c := range chunks {
					lastBlock := j == len(chunks)-1
					if err := depot.HandleChunk(f, ftype, c.Data, c.RawLength, key, lastBlock); err != nil {
						f.Close()
						return errors.Annotate(err).Reason("writing fileid %(id)d").D("id", e.FileID).Err()
					}
				}
				f.Close()
			}
			return nil
		},
	}

	keys.register(cmd.Flags())
	cmd.Flags().StringVar(&out, "outpath", "", "output directory (default: ./<depot>_<version>)")
	cmd.Flags().StringVar(&filter, "filter", "", "only download paths matching this regex")
	cmd.Flags().BoolVar(&skipCLS, "skipcls", false, "connect to the given address directly as a content server, skipping directory lookup")
	cmd.Flags().Float64Var(&rate, "rate", 0, "outbound requests per second to the content server (default: client's built-in limit)")

	return cmd
}
