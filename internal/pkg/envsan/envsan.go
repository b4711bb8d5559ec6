// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package envsan sanitizes the process environment at entry, before any
// other component runs. It also captures the pristine pre-clear
// environment block, which the privilege transition driver later hands
// to the exec'd command unchanged.
//
// Two clearing strategies exist, selected at build time: the
// "nativeenvclear" build tag selects the bulk os.Clearenv() path, and
// its absence selects a per-name unsetenv walk instead, for hosts where
// a bulk clear isn't available. Both satisfy the same Clear() contract.
package envsan

import "github.com/bloomberg/userchroot/internal/pkg/ucerror"

// Capture snapshots the current environment block. Call this before
// Clear; the result is the exact slice later passed to exec.
func Capture() []string {
	return snapshot()
}

// Clear removes every variable from the process environment. It must run
// before the config file is opened or any path is validated, so that
// downstream library code, locale handling, and diagnostic formatting
// cannot be influenced by the caller.
func Clear() error {
	if err := clear(); err != nil {
		return ucerror.New(ucerror.KindEnvironment, "failed to clear environment")
	}
	return nil
}
