// Copyright 2024 Bloomberg Finance L.P.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package devices implements the device provisioner: installing and
// removing the fixed set of fundamental device nodes inside a chroot
// image, plus a writable /dev/shm on hosts that support it.
//
// Two node-creation strategies exist, selected at build time: the
// "devloopback" build tag bind-mounts each host device node over an
// empty directory; its absence (the default) creates device nodes with
// mknod, copying the host node's mode and raw device number. Both
// strategies implement the same createDevice/removeDevice contract
// below.
package devices

import (
	"os"

	"github.com/bloomberg/userchroot/internal/pkg/authorize"
	"github.com/bloomberg/userchroot/internal/pkg/ucerror"
	"github.com/ccoveille/go-safecast"
	"golang.org/x/sys/unix"
)

// fundamentalDevices is the fixed device set every chroot image needs.
var fundamentalDevices = []string{"/dev/null", "/dev/zero", "/dev/random", "/dev/urandom"}

// creationUmask restricts group permissions on created nodes so that
// group ownership inherited from the invoking user cannot grant
// unintended access.
const creationUmask = 0o070

// shmSize is the bounded size of the in-memory /dev/shm filesystem
// mounted inside the chroot.
const shmSize = "size=128m"

const shmPerm = 0o1777 // world-writable, sticky bit.

// requireOwner enforces that device provisioning may only be invoked by
// the chroot's owning user, even though any authorized user may
// otherwise enter the chroot.
func requireOwner(d *authorize.Decision) error {
	uid, err := safecast.ToUint32(os.Getuid())
	if err != nil {
		return ucerror.New(ucerror.KindEnvironment, "could not determine the calling user id")
	}
	if uid != d.OwnerUID {
		return ucerror.New(ucerror.KindPolicy,
			"install or uninstall devices can only be called by the owner of the chroot")
	}
	return nil
}

// Install creates the fundamental device set inside the chroot named by
// d.FinalPath, plus a writable /dev/shm on hosts that support it. Any
// failure is fatal; this function does not attempt rollback of partial
// state.
func Install(d *authorize.Decision) error {
	if err := requireOwner(d); err != nil {
		return err
	}

	oldMask := unix.Umask(creationUmask)
	defer unix.Umask(oldMask)

	for _, dev := range fundamentalDevices {
		if err := createDevice(d.FinalPath, dev); err != nil {
			return err
		}
	}

	if shmSupported() {
		if err := installShm(d.FinalPath); err != nil {
			return err
		}
	}

	return nil
}

// Uninstall is the exact inverse of Install: it removes the device nodes
// and, last, the shared-memory mount.
func Uninstall(d *authorize.Decision) error {
	if err := requireOwner(d); err != nil {
		return err
	}

	for _, dev := range fundamentalDevices {
		if err := removeDevice(d.FinalPath, dev); err != nil {
			return err
		}
	}

	if shmSupported() {
		if err := uninstallShm(d.FinalPath); err != nil {
			return err
		}
	}

	return nil
}

// shmSupported reports whether the host follows the /dev/shm
// shared-memory filesystem convention. This build only targets hosts
// that do.
func shmSupported() bool {
	return true
}

func installShm(chrootPath string) error {
	path := chrootPath + "/dev/shm"

	// Best-effort clean-up of a leftover mount/directory from a prior
	// run before building a fresh one.
	_ = unix.Unmount(path, unix.MNT_FORCE)
	_ = os.Remove(path)

	if err := os.Mkdir(path, shmPerm); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "failed to create /dev/shm directory", path)
	}
	if err := os.Chown(path, 0, 0); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "could not chown /dev/shm to root", path)
	}
	if err := os.Chmod(path, shmPerm); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "could not chmod /dev/shm", path)
	}

	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "could not stat /dev/shm", path)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		return ucerror.WithPath(ucerror.KindProvisioning, "/dev/shm is not a directory", path)
	}
	if st.Mode&shmPerm != shmPerm {
		return ucerror.WithPath(ucerror.KindProvisioning, "wrong permissions on /dev/shm", path)
	}

	if err := unix.Mount("tmpfs", path, "tmpfs", 0, shmSize); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "could not mount /dev/shm", path)
	}

	return nil
}

func uninstallShm(chrootPath string) error {
	path := chrootPath + "/dev/shm"

	if err := unix.Unmount(path, unix.MNT_FORCE); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "could not unmount /dev/shm", path)
	}
	if err := os.Remove(path); err != nil {
		return ucerror.WithPath(ucerror.KindProvisioning, "could not rmdir /dev/shm", path)
	}

	return nil
}
