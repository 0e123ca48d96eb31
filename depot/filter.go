// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depot

import "regexp"

// FullMatch reports whether re matches all of s, not just a substring of
// it -- spec's filter semantics are "does not fully match" rather than
// regexp's default "contains a match". Used for --filter by every command
// that exposes it, local or networked.
func FullMatch(re *regexp.Regexp, s string) bool {
	full, err := regexp.Compile(`^(?:` + re.String() + `)$`)
	if err != nil {
		return false
	}
	return full.MatchString(s)
}
