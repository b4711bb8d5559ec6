// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package pathcheck implements the character whitelist and the
// root-owned-ancestor walk. Every other component that trusts a
// filesystem path routes it through here first.
package pathcheck

import (
	"strings"

	"github.com/bloomberg/userchroot/internal/pkg/ucerror"
	"golang.org/x/sys/unix"
)

// writableBits is the set of mode bits that must not be set on any
// directory in a trusted chain: group-write and other-write.
const writableBits = 0o022

// Whitelist rejects any byte outside A-Z, a-z, 0-9, and
// { '.', '_', '+', ',', '-' }. Slashes are accepted only when
// allowSlashes is true.
func Whitelist(s string, allowSlashes bool) error {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '+' || c == ',' || c == '-':
		case allowSlashes && c == '/':
		default:
			return ucerror.WithPath(ucerror.KindInput, "path contains non-whitelisted characters", s)
		}
	}
	return nil
}

// lstatDir performs a link-level stat and asserts the result is a
// directory, never following a symlink.
func lstatDir(path string) (*unix.Stat_t, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return nil, ucerror.WithPath(ucerror.KindResource, "failed to stat directory", path)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		return nil, ucerror.WithPath(ucerror.KindPolicy, "not a directory", path)
	}
	return &st, nil
}

// checkRootOwnedRestrictive asserts a directory fact is owned by uid 0
// and carries no group- or other-write bit.
func checkRootOwnedRestrictive(path string, st *unix.Stat_t) error {
	if st.Uid != 0 {
		return ucerror.WithPath(ucerror.KindPolicy, "directory should be owned by root", path)
	}
	if st.Mode&writableBits != 0 {
		return ucerror.WithPath(ucerror.KindPolicy, "directory has non-restrictive permissions", path)
	}
	return nil
}

// WalkAncestors iterates every strict ancestor of an absolute path, up to
// and including the root directory, and asserts each is a real
// (non-symlink) directory owned by uid 0 with mode & 0o022 == 0. It does
// not stat the path argument itself: the caller is expected to have
// checked that directly, since the two have different required
// invariants (the final component may be owned by a non-root user). The
// root directory itself is included in the walk: a trust chain that
// stops one level short of "/" leaves the walk's guarantee incomplete.
func WalkAncestors(path string) error {
	if !strings.HasPrefix(path, "/") {
		return ucerror.WithPath(ucerror.KindUsage, "paths should always be absolute", path)
	}

	cur := path
	for {
		idx := strings.LastIndexByte(cur, '/')
		if idx < 0 {
			return ucerror.WithPath(ucerror.KindUsage, "paths should always be absolute", path)
		}

		var parent string
		if idx == 0 {
			parent = "/"
		} else {
			parent = cur[:idx]
		}

		st, err := lstatDir(parent)
		if err != nil {
			return err
		}
		if err := checkRootOwnedRestrictive(parent, st); err != nil {
			return err
		}

		if parent == "/" {
			return nil
		}
		cur = parent
	}
}
