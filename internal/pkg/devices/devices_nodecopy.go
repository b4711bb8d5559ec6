// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

//go:build !devloopback

package devices

import (
	"os"

	"github.com/bloomberg/userchroot/internal/pkg/ucerror"
	"golang.org/x/sys/unix"
)

// createDevice implements the node-copy strategy: stat the host's device
// node and create an identical one (same mode, same raw device number)
// inside the chroot. It refuses to overwrite an existing target, so a
// second install attempt over a live chroot fails cleanly rather than
// clobbering the first.
func createDevice(chrootPath, devPath string) error {
	finalPath := chrootPath + devPath

	if _, err := os.Lstat(finalPath); err == nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "device already exists", finalPath)
	}

	var real unix.Stat_t
	if err := unix.Stat(devPath, &real); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "failed to stat source device", devPath)
	}

	if err := unix.Mknod(finalPath, real.Mode, int(real.Rdev)); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "failed to create device node", finalPath)
	}

	return nil
}

// removeDevice unlinks a node created by createDevice.
func removeDevice(chrootPath, devPath string) error {
	finalPath := chrootPath + devPath
	if err := unix.Unlink(finalPath); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "failed to unlink device node", finalPath)
	}
	return nil
}
