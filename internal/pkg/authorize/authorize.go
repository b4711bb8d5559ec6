// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package authorize implements the policy decision: splitting the
// requested target into base and leaf, verifying both are structurally
// sound and consistently owned, and matching the resulting (owner, base)
// pair against the compiled-in configuration file.
package authorize

import (
	"strings"

	"github.com/bloomberg/userchroot/internal/pkg/configfile"
	"github.com/bloomberg/userchroot/internal/pkg/identity"
	"github.com/bloomberg/userchroot/internal/pkg/pathcheck"
	"github.com/bloomberg/userchroot/internal/pkg/ucerror"
	"golang.org/x/sys/unix"
)

// writableBits matches pathcheck's restrictive-permission test.
const writableBits = 0o022

// Decision is the outcome of a successful authorization: the policy
// matched, and Base/Leaf/OwnerUID/OwnerName are safe to hand to the
// privilege transition driver and the device provisioner.
type Decision struct {
	Base      string
	Leaf      string
	FinalPath string
	OwnerUID  uint32
	OwnerName string
}

func lstat(path string) (*unix.Stat_t, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return nil, ucerror.WithPath(ucerror.KindResource, "failed to stat", path)
	}
	return &st, nil
}

func requireRestrictiveDir(path string, st *unix.Stat_t) error {
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		return ucerror.WithPath(ucerror.KindPolicy, "not a directory", path)
	}
	if st.Mode&writableBits != 0 {
		return ucerror.WithPath(ucerror.KindPolicy, "directory has non-restrictive permissions", path)
	}
	return nil
}

// splitTarget divides an absolute target path into base and leaf at its
// final slash, rejecting the structural edge cases: non-absolute
// targets, an empty base (the target has no slash but the leading one),
// a trailing slash (empty leaf), and "." or ".."
// as the leaf.
func splitTarget(target string) (base, leaf string, err error) {
	if !strings.HasPrefix(target, "/") {
		return "", "", ucerror.WithPath(ucerror.KindUsage, "path should be absolute", target)
	}

	idx := strings.LastIndexByte(target, '/')
	base = target[:idx]
	leaf = target[idx+1:]

	if base == "" {
		return "", "", ucerror.WithPath(ucerror.KindUsage, "this is not a possible target for userchroot", target)
	}
	if leaf == "" {
		return "", "", ucerror.WithPath(ucerror.KindUsage, "trailing slashes are not allowed in the path", target)
	}
	if leaf == "." || leaf == ".." {
		return "", "", ucerror.WithPath(ucerror.KindUsage, ". and .. are not allowed as part of the chroot path", target)
	}

	return base, leaf, nil
}

// Authorize runs the full decision procedure and returns a Decision only
// when the policy file contains an exact "<owner_name>:<base>\n" line.
// Any structural, ownership, or user-database failure is returned
// immediately; a clean structural parse that simply fails to match the
// policy is returned as a KindPolicy error too, since a policy mismatch
// is a hard denial indistinguishable in severity from the others.
func Authorize(gk *configfile.Gatekeeper, target string) (*Decision, error) {
	if err := pathcheck.Whitelist(target, true); err != nil {
		return nil, err
	}

	targetStat, err := lstat(target)
	if err != nil {
		return nil, err
	}
	if err := requireRestrictiveDir(target, targetStat); err != nil {
		return nil, err
	}
	finalOwner := targetStat.Uid

	base, leaf, err := splitTarget(target)
	if err != nil {
		return nil, err
	}

	if err := pathcheck.Whitelist(base, true); err != nil {
		return nil, err
	}
	if err := pathcheck.Whitelist(leaf, false); err != nil {
		return nil, err
	}

	baseStat, err := lstat(base)
	if err != nil {
		return nil, err
	}
	if err := requireRestrictiveDir(base, baseStat); err != nil {
		return nil, err
	}
	if baseStat.Uid != finalOwner {
		return nil, ucerror.WithPath(ucerror.KindPolicy,
			"base and target must have the same owner", target)
	}
	if baseStat.Uid == 0 {
		return nil, ucerror.WithPath(ucerror.KindPolicy,
			"chroot base must not be owned by root", base)
	}

	ownerName, err := identity.LookupName(finalOwner)
	if err != nil {
		return nil, err
	}

	if err := pathcheck.WalkAncestors(base); err != nil {
		return nil, err
	}

	wantLine := ownerName + ":" + base + "\n"
	matched, err := gk.MatchLine(wantLine)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ucerror.New(ucerror.KindPolicy, "Permission Denied. Aborting.")
	}

	return &Decision{
		Base:      base,
		Leaf:      leaf,
		FinalPath: base + "/" + leaf,
		OwnerUID:  finalOwner,
		OwnerName: ownerName,
	}, nil
}
