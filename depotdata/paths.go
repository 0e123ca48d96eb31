// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depotdata

import (
	"path/filepath"
	"strings"

	"go.chromium.org/luci/common/data/stringset"
	"go.chromium.org/luci/common/errors"
)

// FullPath walks e's parent chain up to the root, collecting names along the
// way, and joins them with the platform path separator. It returns the
// empty string for the root entry. It fails with ErrCycleDetected if the
// chain doesn't reach the root within len(m.Entries) hops.
func (m *Manifest) FullPath(e *DirEntry) (string, error) {
	if e.Index == 0 {
		return "", nil
	}

	var parts []string
	cur := e
	for hops := 0; ; hops++ {
		if hops > len(m.Entries) {
			return "", errors.Annotate(ErrCycleDetected).Reason("resolving path for entry %(i)d").
				D("i", e.Index).Err()
		}
		name, err := m.Name(cur)
		if err != nil {
			return "", errors.Annotate(err).Reason("resolving name of entry %(i)d").D("i", cur.Index).Err()
		}
		if cur.Index != 0 {
			parts = append(parts, name)
		}
		if cur.Index == 0 {
			break
		}
		cur = &m.Entries[cur.Parent]
	}

	// parts was collected leaf-to-root; reverse it.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return filepath.Join(parts...), nil
}

// SanitizePathForMkdir strips the colon character from path -- a
// compatibility affordance for legacy drive-letter-prefixed paths that
// sometimes appear in depot manifests. It is applied only when creating
// directories on disk, never to the names returned by FullPath (used by ls
// and iton), per spec.
func SanitizePathForMkdir(path string) string {
	return strings.ReplaceAll(path, ":", "")
}

// ValidateTree confirms that every entry's parent chain reaches the root
// (see FullPath) and that no directory has two children sharing a name,
// matching the duplicate-name check a legacy filesystem tree must satisfy.
func (m *Manifest) ValidateTree() error {
	childrenByParent := make(map[uint32][]uint32)
	for i := range m.Entries {
		if i == 0 {
			continue
		}
		childrenByParent[m.Entries[i].Parent] = append(childrenByParent[m.Entries[i].Parent], uint32(i))
	}

	for parent, kids := range childrenByParent {
		seen := stringset.New(len(kids))
		for _, idx := range kids {
			name, err := m.Name(&m.Entries[idx])
			if err != nil {
				return errors.Annotate(err).Reason("naming child %(i)d of %(p)d").
					D("i", idx).D("p", parent).Err()
			}
			if !seen.Add(name) {
				return errors.Reason("duplicate entry %(name)q under directory %(p)d").
					D("name", name).D("p", parent).Err()
			}
		}
	}

	for i := range m.Entries {
		if _, err := m.FullPath(&m.Entries[i]); err != nil {
			return err
		}
	}
	return nil
}
