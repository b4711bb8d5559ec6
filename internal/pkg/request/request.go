// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package request parses argv into the Invocation Request of spec
// section 3: an absolute target path plus a mode, either executing a
// command or installing/uninstalling the fundamental device set.
package request

import "github.com/bloomberg/userchroot/internal/pkg/ucerror"

// Mode selects what userchroot does once the target has been authorized.
type Mode int

const (
	// ModeExec chroots into the target and execs Argv.
	ModeExec Mode = iota
	// ModeInstallDevices creates the fundamental device set inside the
	// target chroot; only the chroot's owner may request this.
	ModeInstallDevices
	// ModeUninstallDevices removes the fundamental device set from the
	// target chroot; only the chroot's owner may request this.
	ModeUninstallDevices
)

const (
	installFlag   = "--install-devices"
	uninstallFlag = "--uninstall-devices"
)

// Request is the parsed, immutable representation of a userchroot
// invocation.
type Request struct {
	Target string
	Mode   Mode
	// Argv holds the command and its arguments when Mode is ModeExec;
	// Argv[0] is the program to execute.
	Argv []string
}

// Parse builds a Request from argv, excluding the program name (i.e.
// os.Args[1:]). Structural validation of the target path itself
// (absoluteness, character whitelist, ". "/".." as leaf, and so on) is
// the job of pathcheck and authorize; Parse only enforces the argument
// count and flag-dispatch rules.
func Parse(args []string) (*Request, error) {
	if len(args) < 2 {
		return nil, ucerror.New(ucerror.KindUsage,
			"usage: userchroot path <--install-devices|--uninstall-devices|command ...>")
	}

	target := args[0]
	second := args[1]

	if len(second) > 0 && second[0] == '-' {
		switch second {
		case installFlag:
			return &Request{Target: target, Mode: ModeInstallDevices}, nil
		case uninstallFlag:
			return &Request{Target: target, Mode: ModeUninstallDevices}, nil
		default:
			return nil, ucerror.New(ucerror.KindUsage, "unrecognized flag "+second)
		}
	}

	return &Request{Target: target, Mode: ModeExec, Argv: args[1:]}, nil
}
