// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

//go:build devloopback

package devices

import (
	"os"

	"github.com/bloomberg/userchroot/internal/pkg/ucerror"
	"golang.org/x/sys/unix"
)

// createDevice implements the loopback-mount strategy: an empty
// directory is created at the chroot-side path and the host's device
// node is bind-mounted over it, so the chroot sees a live view of the
// real device rather than a copy of its identity.
func createDevice(chrootPath, devPath string) error {
	finalPath := chrootPath + devPath

	if err := os.Mkdir(finalPath, 0o755); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "failed to mkdir to mount", finalPath)
	}

	if err := unix.Mount(devPath, finalPath, "", unix.MS_BIND, ""); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "failed to bind mount device", finalPath)
	}

	return nil
}

// removeDevice unmounts and removes a directory created by createDevice.
// A second rmdir attempt on the same path is issued after the first
// succeeds; it is expected to fail harmlessly once the directory is
// already gone, so its error is ignored.
func removeDevice(chrootPath, devPath string) error {
	finalPath := chrootPath + devPath

	if err := unix.Unmount(finalPath, 0); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "failed to umount device", finalPath)
	}
	if err := os.Remove(finalPath); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "failed to rmdir device", finalPath)
	}
	_ = os.Remove(finalPath)

	return nil
}
