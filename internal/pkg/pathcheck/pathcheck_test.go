// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package pathcheck

import (
	"os"
	"testing"

	"github.com/bloomberg/userchroot/internal/pkg/ucerror"
)

func TestWhitelistRejectsBadBytes(t *testing.T) {
	cases := []struct {
		in           string
		allowSlashes bool
		wantErr      bool
	}{
		{"abcXYZ09.-_+,", false, false},
		{"/srv/jails/work", true, false},
		{"/srv/jails/work", false, true},
		{"has space", false, true},
		{"semi;colon", false, true},
		{"", false, false},
	}

	for _, tt := range cases {
		err := Whitelist(tt.in, tt.allowSlashes)
		if tt.wantErr && err == nil {
			t.Errorf("Whitelist(%q, %v) = nil, want error", tt.in, tt.allowSlashes)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("Whitelist(%q, %v) = %v, want nil", tt.in, tt.allowSlashes, err)
		}
		if tt.wantErr {
			if e, ok := err.(*ucerror.Error); !ok || e.Kind != ucerror.KindInput {
				t.Errorf("Whitelist error = %#v, want kind KindInput", err)
			}
		}
	}
}

func TestWalkAncestorsRejectsWritableAncestor(t *testing.T) {
	if os.Geteuid() != 0 {
		t.Skip("ancestor ownership checks require root to set up a root-owned tree")
	}

	root := t.TempDir()
	if err := os.Chmod(root, 0o775); err != nil {
		t.Fatal(err)
	}
	target := root + "/work"
	if err := os.Mkdir(target, 0o750); err != nil {
		t.Fatal(err)
	}

	if err := WalkAncestors(target); err == nil {
		t.Fatal("expected WalkAncestors to reject a group-writable ancestor")
	}
}

func TestWalkAncestorsAcceptsRestrictiveTree(t *testing.T) {
	if os.Geteuid() != 0 {
		t.Skip("ancestor ownership checks require root to set up a root-owned tree")
	}

	// t.TempDir lives under a world-writable temp directory, which the
	// walk rejects, so the tree is built directly under "/".
	root, err := os.MkdirTemp("/", "userchroot-test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(root) })
	if err := os.Chmod(root, 0o755); err != nil {
		t.Fatal(err)
	}
	target := root + "/work"
	if err := os.Mkdir(target, 0o750); err != nil {
		t.Fatal(err)
	}

	if err := WalkAncestors(target); err != nil {
		t.Fatalf("WalkAncestors(%q) = %v, want nil", target, err)
	}
}

func TestWalkAncestorsRejectsRelativePath(t *testing.T) {
	if err := WalkAncestors("relative/path"); err == nil {
		t.Fatal("expected WalkAncestors to reject a non-absolute path")
	}
}
