// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Command userchroot is a setuid-root privilege gateway: it lets an
// unprivileged caller enter a whitelisted chroot and then irrevocably
// drops every identity before executing the caller's command, or
// installs/removes the chroot's fundamental device nodes under the same
// authorization.
package main

import (
	"os"
	"runtime"

	"github.com/bloomberg/userchroot/internal/pkg/authorize"
	"github.com/bloomberg/userchroot/internal/pkg/buildcfg"
	"github.com/bloomberg/userchroot/internal/pkg/configfile"
	"github.com/bloomberg/userchroot/internal/pkg/devices"
	"github.com/bloomberg/userchroot/internal/pkg/envsan"
	"github.com/bloomberg/userchroot/internal/pkg/request"
	"github.com/bloomberg/userchroot/internal/pkg/sylog"
	"github.com/bloomberg/userchroot/internal/pkg/transition"
	"github.com/bloomberg/userchroot/internal/pkg/ucerror"
	"golang.org/x/sys/unix"
)

func init() {
	// Every credential-sensitive syscall in this program must run on the
	// single OS thread that will eventually call exec: Go's runtime can
	// otherwise migrate the goroutine between calls, leaving some
	// threads with the old credentials.
	runtime.LockOSThread()
	runtime.GOMAXPROCS(1)
}

func main() {
	// Sanitize the environment before any other work. The pristine
	// block is captured first so it can still be handed to the eventual
	// exec.
	originalEnv := envsan.Capture()
	if err := envsan.Clear(); err != nil {
		fatal(err)
	}

	if err := checkEntryIdentity(); err != nil {
		fatal(err)
	}

	req, err := request.Parse(os.Args[1:])
	if err != nil {
		fatal(err)
	}

	gk, err := configfile.Open(buildcfg.ConfigFile)
	if err != nil {
		fatal(err)
	}
	defer gk.Close()

	decision, err := authorize.Authorize(gk, req.Target)
	if err != nil {
		fatal(err)
	}

	if err := gk.Close(); err != nil {
		fatal(err)
	}

	switch req.Mode {
	case request.ModeInstallDevices:
		if err := devices.Install(decision); err != nil {
			fatal(err)
		}
	case request.ModeUninstallDevices:
		if err := devices.Uninstall(decision); err != nil {
			fatal(err)
		}
	case request.ModeExec:
		if err := transition.Exec(decision, req.Argv, originalEnv); err != nil {
			fatal(err)
		}
	}
}

// checkEntryIdentity enforces the at-entry identity preconditions:
// effective root, real uid not zero, and neither real nor effective gid
// zero (userchroot must not be setgid root).
func checkEntryIdentity() error {
	if unix.Geteuid() != 0 {
		return ucerror.New(ucerror.KindEnvironment, "should be run with root privileges")
	}
	if unix.Getgid() == 0 || unix.Getegid() == 0 {
		return ucerror.New(ucerror.KindEnvironment, "userchroot should not be setgid root")
	}
	if unix.Getuid() == 0 {
		return ucerror.New(ucerror.KindEnvironment, "should not be run as root")
	}
	return nil
}

// fatal turns a pipeline error into the one allowed diagnostic line and
// the fixed nonzero exit code.
func fatal(err error) {
	sylog.Fatalf("%s", err.Error())
}
