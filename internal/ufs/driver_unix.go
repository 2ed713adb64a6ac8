// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

//go:build unix

package ufs

import (
	"golang.org/x/sys/unix"
)

// UnixDriver is a Driver that uses the unix package to make io calls.
type UnixDriver struct {
	modes Modes
}

var _ Driver = (*UnixDriver)(nil)

// NewDriver returns the Driver for the current platform. Entries created by
// the driver have their permissions set to the given modes regardless of the
// process umask.
func NewDriver(modes Modes) Driver {
	return &UnixDriver{modes: modes.withDefaults()}
}

// CreateEmptyFile creates a new, empty regular file at path. O_EXCL is used so
// the call never truncates an entry that appeared since the caller checked.
func (d *UnixDriver) CreateEmptyFile(path string) error {
	var fd int
	err := ignoringEINTR(func() error {
		var err error
		fd, err = unix.Open(path, unix.O_CREAT|unix.O_EXCL|unix.O_WRONLY|unix.O_CLOEXEC|unix.O_NOFOLLOW, uint32(syscallMode(d.modes.File)))
		return err
	})
	if err != nil {
		return convertErrorType(&PathError{Op: "create", Path: path, Err: err})
	}
	defer unix.Close(fd)
	// The mode passed to open is filtered through the umask, apply the
	// configured mode explicitly.
	if err := unix.Fchmod(fd, uint32(syscallMode(d.modes.File))); err != nil {
		return convertErrorType(&PathError{Op: "chmod", Path: path, Err: err})
	}
	return nil
}

// CreateEmptyDirectory creates a new, empty directory at path.
func (d *UnixDriver) CreateEmptyDirectory(path string) error {
	err := ignoringEINTR(func() error {
		return unix.Mkdir(path, uint32(syscallMode(d.modes.Directory)))
	})
	if err != nil {
		return convertErrorType(&PathError{Op: "mkdir", Path: path, Err: err})
	}
	if err := unix.Chmod(path, uint32(syscallMode(d.modes.Directory))); err != nil {
		return convertErrorType(&PathError{Op: "chmod", Path: path, Err: err})
	}
	return nil
}

// IsLink reports whether path is a symbolic link.
func (d *UnixDriver) IsLink(path string) bool {
	var st unix.Stat_t
	if err := ignoringEINTR(func() error {
		return unix.Lstat(path, &st)
	}); err != nil {
		return false
	}
	return st.Mode&unix.S_IFMT == unix.S_IFLNK
}

// RemoveLink unlinks the symbolic link at path.
func (d *UnixDriver) RemoveLink(path string) error {
	if !d.IsLink(path) {
		return &PathError{Op: "unlink", Path: path, Err: ErrNotLink}
	}
	err := ignoringEINTR(func() error {
		return unix.Unlink(path)
	})
	if err != nil {
		return convertErrorType(&PathError{Op: "unlink", Path: path, Err: err})
	}
	return nil
}
