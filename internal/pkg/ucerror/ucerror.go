// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package ucerror defines the fatal-error taxonomy shared across every
// component of the authorization and privilege-transition pipeline.
// Every component returns one of these instead of exiting directly;
// only cmd/userchroot turns an Error into a stderr line and a process
// exit.
package ucerror

import "fmt"

// Kind classifies a fatal error by where in the pipeline it was detected.
type Kind int

const (
	// KindUsage covers argv shape: too few arguments, unknown flag,
	// trailing slash, "." or ".." leaf, non-absolute path.
	KindUsage Kind = iota
	// KindInput covers a byte outside the path character whitelist.
	KindInput
	// KindEnvironment covers the at-entry identity preconditions: not
	// effective root, real uid zero, group-root, or a corrupted
	// environment during sanitization.
	KindEnvironment
	// KindPolicy covers authorization decisions: non-root ancestor,
	// writable ancestor, target not a directory, owner mismatch, unknown
	// account, no matching config line.
	KindPolicy
	// KindTOCTOU covers the config file identity check.
	KindTOCTOU
	// KindResource covers allocation, stat, and open failures unrelated
	// to policy.
	KindResource
	// KindProvisioning covers device node/mount install and uninstall
	// failures.
	KindProvisioning
	// KindTransition covers chdir/chroot/setuid/exec failures and any
	// residual or regained privilege detected after the drop.
	KindTransition
)

// Error is a fatal, single-line diagnostic tied to a Kind and, where
// applicable, the filesystem path or operation that triggered it.
type Error struct {
	Kind   Kind
	Reason string
	Path   string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

// New builds an Error with no associated path.
func New(k Kind, reason string) *Error {
	return &Error{Kind: k, Reason: reason}
}

// Newf builds an Error with no associated path from a format string.
func Newf(k Kind, format string, a ...interface{}) *Error {
	return &Error{Kind: k, Reason: fmt.Sprintf(format, a...)}
}

// WithPath builds an Error that names the offending path or operation,
// which every fatal diagnostic message must include.
func WithPath(k Kind, reason, path string) *Error {
	return &Error{Kind: k, Reason: reason, Path: path}
}
