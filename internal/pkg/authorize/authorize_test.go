// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package authorize

import "testing"

func TestSplitTargetRejectsTrailingSlash(t *testing.T) {
	if _, _, err := splitTarget("/srv/jails/work/"); err == nil {
		t.Fatal("expected trailing slash to be rejected")
	}
}

func TestSplitTargetRejectsDotDot(t *testing.T) {
	if _, _, err := splitTarget("/srv/jails/.."); err == nil {
		t.Fatal("expected .. leaf to be rejected")
	}
	if _, _, err := splitTarget("/srv/jails/."); err == nil {
		t.Fatal("expected . leaf to be rejected")
	}
}

func TestSplitTargetRejectsBareRootChild(t *testing.T) {
	if _, _, err := splitTarget("/work"); err == nil {
		t.Fatal("expected a path with no base component to be rejected")
	}
}

func TestSplitTargetRejectsRelative(t *testing.T) {
	if _, _, err := splitTarget("srv/jails/work"); err == nil {
		t.Fatal("expected a relative path to be rejected")
	}
}

func TestSplitTargetOK(t *testing.T) {
	base, leaf, err := splitTarget("/srv/jails/work")
	if err != nil {
		t.Fatal(err)
	}
	if base != "/srv/jails" || leaf != "work" {
		t.Fatalf("splitTarget = (%q, %q), want (/srv/jails, work)", base, leaf)
	}
}
