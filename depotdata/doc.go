// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package depotdata implements the binary decoders for the four files that
// make up a steam2-style content depot: the Manifest (filesystem tree
// metadata), the Index (per-file block layout, in the v2 or v3 dialect), the
// Checksum file (per-block integrity sums), and the header of the Storage
// blob itself.
//
// Everything in this package is a pure decode of bytes already in memory (or
// reachable through an io.ReaderAt for the Storage blob) into the types that
// the depot package's extraction engine walks. Nothing here knows about
// files on disk, worker pools, or output directories -- that is the depot
// package's job.
package depotdata
