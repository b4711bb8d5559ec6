// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package sylog is a minimal stderr diagnostic logger. userchroot has no
// structured logging and no log levels visible to the caller: every
// message is a single human-readable line, and Fatalf is the only path by
// which the process ever terminates with an error.
package sylog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bloomberg/userchroot/internal/pkg/buildcfg"
)

// logWriter is where diagnostics go; overridable by tests.
var logWriter io.Writer = os.Stderr

func writeLine(format string, a ...interface{}) {
	message := fmt.Sprintf(format, a...)
	message = strings.TrimRight(message, "\n")
	fmt.Fprintf(logWriter, "%s\n", message)
}

// Fatalf writes a single diagnostic line to stderr and terminates the
// process with the fixed error exit code. No package other than main may
// call this directly outside of the top-level error handling in
// cmd/userchroot.
func Fatalf(format string, a ...interface{}) {
	writeLine(format, a...)
	os.Exit(buildcfg.ErrExitCode)
}
