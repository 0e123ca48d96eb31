// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package steam2extract decodes and extracts legacy game-content depots: a
// Manifest (a directory tree plus a filename heap), an Index describing how
// each file's bytes are laid out and encoded, a Storage blob holding the
// encoded bytes themselves, and an optional Checksum file recording a sum
// per 32KiB window of every file's plaintext.
//
// A depot's four pieces are decoded independently:
//   - depotdata parses the on-disk Manifest, Index (both the v2 and v3
//     dialects), Storage header, and Checksum formats, and implements the
//     AES-256-CBC decryption and zlib inflation needed to recover a file's
//     plaintext from its Storage blocks.
//   - depot combines a decoded Manifest, Index, Storage blob, and resolved
//     decryption key into extraction and validation operations, bounded to a
//     worker pool sized to the machine running them.
//   - steam2net speaks the proprietary TCP protocol a directory server and
//     content server use to serve a depot over the network: content-server
//     lookup, the Manifest, the Checksum file, the CDR blob, and each file's
//     chunks (in place of a local Index and Storage blob).
//   - cmd/steam2 is the command-line front end over both: extract, list,
//     validate, and resolve fileids locally, or download, list, and fetch
//     the CDR blob from a content server.
//
// This package itself holds no code; it exists only to give the module as a
// whole a place to document how its pieces fit together.
package steam2extract
