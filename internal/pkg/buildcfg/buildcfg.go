// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package buildcfg holds the handful of process-wide constants that are
// baked into the userchroot binary at build time. Production builds
// override these with -ldflags -X; the defaults below only matter for
// ad-hoc, non-installed builds.
package buildcfg

// ConfigFile is the absolute path to the compiled-in authorization policy
// file. It is immutable for the lifetime of the process and is never
// derived from argv or the environment.
var ConfigFile = "/etc/userchroot.conf"

// Version is the version string stamped into the binary at build time.
var Version = "unknown"

// ErrExitCode is the single fixed exit status used for every fatal error
// path.
const ErrExitCode = 1
