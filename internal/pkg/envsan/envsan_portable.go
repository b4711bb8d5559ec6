// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

//go:build !nativeenvclear

package envsan

import (
	"os"
	"strings"
)

// snapshot and clear implement the portable strategy: walk the
// environment and unset each name individually, for hosts with no bulk
// clear facility. This is the default build configuration.
func snapshot() []string {
	return os.Environ()
}

func clear() error {
	for _, kv := range os.Environ() {
		name, _, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return errCorruptEnvironment
		}
		if err := os.Unsetenv(name); err != nil {
			return err
		}
	}
	return nil
}

var errCorruptEnvironment = &corruptEnvError{}

type corruptEnvError struct{}

func (*corruptEnvError) Error() string { return "corrupted environment" }
