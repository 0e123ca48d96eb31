// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command steam2 extracts, lists, and validates legacy game-content depots,
// optionally fetching them from a content server instead of reading local
// files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// keyFlags holds the two ways a decryption key can be supplied on the
// command line: a keystore file mapping cacheid to hex key, and a literal
// hex key used when the keystore has no entry (or isn't given at all).
type keyFlags struct {
	keystorePath string
	keyHex       string
}

func (k *keyFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&k.keystorePath, "keystore", "", "path to a keystore file (cacheid -> hex key, one per line)")
	flags.StringVar(&k.keyHex, "key", "", "decryption key as hex, used when the keystore has no entry for the depot")
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "steam2",
		Short: "Decode, extract, and validate legacy depot archives",
	}

	rootCmd.AddCommand(NewExtractCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewItoNCommand())
	rootCmd.AddCommand(NewLsBlkCommand())
	rootCmd.AddCommand(NewDownloadCommand())
	rootCmd.AddCommand(NewListRemoteCommand())
	rootCmd.AddCommand(NewDownloadCDRCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
