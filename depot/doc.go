// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package depot opens a legacy depot -- a Manifest, an Index, a Storage
// blob, and an optional Checksum file -- and extracts or validates its
// contents.
package depot
