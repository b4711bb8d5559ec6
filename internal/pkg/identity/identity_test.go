// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package identity

import "testing"

func TestLookupNameRoot(t *testing.T) {
	name, err := LookupName(0)
	if err != nil {
		t.Skipf("no /etc/passwd entry for uid 0 on this host: %v", err)
	}
	if name != "root" {
		t.Fatalf("LookupName(0) = %q, want %q", name, "root")
	}
}

func TestLookupNameUnknownUID(t *testing.T) {
	const farOutUID = 0x7ffffffe
	if _, err := LookupName(farOutUID); err == nil {
		t.Fatalf("expected LookupName(%d) to fail for an unassigned uid", farOutUID)
	}
}
