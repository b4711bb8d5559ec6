// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package devices

import (
	"os"
	"testing"

	"github.com/bloomberg/userchroot/internal/pkg/authorize"
)

func TestInstallRejectsNonOwner(t *testing.T) {
	d := &authorize.Decision{
		Base:      "/srv/jails",
		Leaf:      "work",
		FinalPath: t.TempDir(),
		OwnerUID:  uint32(os.Getuid()) + 1,
	}

	if err := Install(d); err == nil {
		t.Fatal("expected Install to reject a non-owner caller")
	}
}

func TestUninstallRejectsNonOwner(t *testing.T) {
	d := &authorize.Decision{
		Base:      "/srv/jails",
		Leaf:      "work",
		FinalPath: t.TempDir(),
		OwnerUID:  uint32(os.Getuid()) + 1,
	}

	if err := Uninstall(d); err == nil {
		t.Fatal("expected Uninstall to reject a non-owner caller")
	}
}

func TestCreateDeviceRejectsExistingTarget(t *testing.T) {
	if os.Geteuid() != 0 {
		t.Skip("device node creation requires root")
	}

	chroot := t.TempDir()
	if err := os.MkdirAll(chroot+"/dev", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(chroot+"/dev/null", nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := createDevice(chroot, "/dev/null"); err == nil {
		t.Fatal("expected createDevice to refuse to overwrite an existing target")
	}
}
