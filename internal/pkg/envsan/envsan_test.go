// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package envsan

import (
	"os"
	"testing"
)

func TestCaptureThenClear(t *testing.T) {
	t.Setenv("USERCHROOT_TEST_VAR", "present")

	before := Capture()
	found := false
	for _, kv := range before {
		if kv == "USERCHROOT_TEST_VAR=present" {
			found = true
		}
	}
	if !found {
		t.Fatal("Capture did not see the variable set just before it")
	}

	if err := Clear(); err != nil {
		t.Fatalf("Clear() = %v, want nil", err)
	}

	if v, ok := os.LookupEnv("USERCHROOT_TEST_VAR"); ok {
		t.Fatalf("environment not cleared: USERCHROOT_TEST_VAR=%q", v)
	}
	if len(os.Environ()) != 0 {
		t.Fatalf("environment not fully cleared: %v", os.Environ())
	}
}
