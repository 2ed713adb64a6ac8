// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

//go:build windows

package ufs

import (
	"os"
	"path/filepath"
)

// WindowsDriver approximates the primitives with the os package. A "link" on
// Windows is a directory entry whose resolved target differs from itself, and
// it is removed with a directory removal.
type WindowsDriver struct {
	modes Modes
}

var _ Driver = (*WindowsDriver)(nil)

// NewDriver returns the Driver for the current platform.
func NewDriver(modes Modes) Driver {
	return &WindowsDriver{modes: modes.withDefaults()}
}

func (d *WindowsDriver) CreateEmptyFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, d.modes.File)
	if err != nil {
		return err
	}
	return f.Close()
}

func (d *WindowsDriver) CreateEmptyDirectory(path string) error {
	return os.Mkdir(path, d.modes.Directory)
}

func (d *WindowsDriver) IsLink(path string) bool {
	st, err := os.Lstat(path)
	if err != nil {
		return false
	}
	if st.Mode()&os.ModeSymlink != 0 {
		return true
	}
	if !st.IsDir() {
		return false
	}
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return !sameLocation(target, abs)
}

func (d *WindowsDriver) RemoveLink(path string) error {
	if !d.IsLink(path) {
		return &PathError{Op: "rmdir", Path: path, Err: ErrNotLink}
	}
	return os.Remove(path)
}

func sameLocation(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
