// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package steam2net implements the optional network path: asking a
// directory server for content-server addresses, downloading a depot's
// Manifest/Checksum/CDR from a content server, and fetching individual
// files chunk by chunk.
package steam2net
