// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package transition implements the privilege transition driver of spec
// section 4.5: chroot into the authorized target, irrevocably drop every
// identity to the invoking user, verify the drop is irrevocable, and
// replace the process image with the requested command.
//
// Every step here must run on the single OS thread that will go on to
// call exec: golang.org/x/sys/unix's setuid-family syscalls are only
// guaranteed to apply to every OS thread when the calling goroutine owns
// the only thread in play (see cmd/userchroot/main.go, which locks the
// thread and sets GOMAXPROCS(1) before any of this runs).
package transition

import (
	"github.com/bloomberg/userchroot/internal/pkg/authorize"
	"github.com/bloomberg/userchroot/internal/pkg/pathcheck"
	"github.com/bloomberg/userchroot/internal/pkg/ucerror"
	"golang.org/x/sys/unix"
)

// Exec performs the full transition sequence and, on success, replaces
// the current process image: it never returns on the success path. argv
// is the command and its arguments as given on the command line; env is
// the pristine pre-sanitization environment block captured by envsan
// before the process cleared its own environment.
func Exec(d *authorize.Decision, argv []string, env []string) error {
	if len(argv) == 0 {
		return ucerror.New(ucerror.KindUsage, "no command given")
	}
	if err := pathcheck.Whitelist(argv[0], true); err != nil {
		return err
	}

	if err := unix.Chdir(d.FinalPath); err != nil {
		return ucerror.WithPath(ucerror.KindTransition, "failed to chdir to the chroot directory", d.FinalPath)
	}
	if err := unix.Chroot(d.FinalPath); err != nil {
		return ucerror.WithPath(ucerror.KindTransition, "failed to chroot", d.FinalPath)
	}

	if err := dropPrivileges(unix.Getuid(), unix.Getgid()); err != nil {
		return err
	}
	if err := verifyDropIrrevocable(); err != nil {
		return err
	}

	if err := unix.Chdir("/"); err != nil {
		return ucerror.New(ucerror.KindTransition, "failed to chdir to the root directory")
	}

	if err := unix.Exec(argv[0], argv, env); err != nil {
		return ucerror.WithPath(ucerror.KindTransition, "failed to exec", argv[0])
	}

	// unix.Exec only returns on failure.
	return ucerror.WithPath(ucerror.KindTransition, "failed to exec", argv[0])
}

// dropPrivileges collapses every identity to the invoking user's real
// uid and gid, both real and effective, using setresuid/setresgid so no
// saved-id survives the call; platforms that would leave a saved id
// behind are expected to fail this call rather than silently succeed.
func dropPrivileges(uid, gid int) error {
	if err := unix.Setresgid(gid, gid, gid); err != nil {
		return ucerror.New(ucerror.KindTransition, "failed to give up group privileges")
	}
	if err := unix.Setresuid(uid, uid, uid); err != nil {
		return ucerror.New(ucerror.KindTransition, "failed to give up privileges")
	}
	return nil
}

// verifyDropIrrevocable runs four attempts to regain root, each of which
// must fail, and then re-reads all four identity values, every one of which
// must now be non-zero (for the gids) or non-root (for the uids). Any
// success at regaining privilege, or any residual root identity, is
// fatal.
func verifyDropIrrevocable() error {
	if unix.Setuid(0) == nil {
		return ucerror.New(ucerror.KindTransition, "failed to give up privileges")
	}
	if unix.Seteuid(0) == nil {
		return ucerror.New(ucerror.KindTransition, "failed to give up privileges")
	}
	if unix.Setgid(0) == nil {
		return ucerror.New(ucerror.KindTransition, "failed to give up privileges")
	}
	if unix.Setegid(0) == nil {
		return ucerror.New(ucerror.KindTransition, "failed to give up privileges")
	}

	var ruid, euid, suid int
	if err := unix.Getresuid(&ruid, &euid, &suid); err != nil {
		return ucerror.New(ucerror.KindTransition, "failed to verify dropped privileges")
	}
	var rgid, egid, sgid int
	if err := unix.Getresgid(&rgid, &egid, &sgid); err != nil {
		return ucerror.New(ucerror.KindTransition, "failed to verify dropped privileges")
	}
	if ruid == 0 || euid == 0 {
		return ucerror.New(ucerror.KindTransition, "failed to give up privileges")
	}
	if rgid == 0 || egid == 0 {
		return ucerror.New(ucerror.KindTransition, "failed to give up privileges")
	}

	return nil
}
