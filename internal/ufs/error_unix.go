// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

//go:build unix

package ufs

import (
	"errors"

	"golang.org/x/sys/unix"
)

// convertErrorType converts errors into our custom errors to ensure consistent
// error values.
func convertErrorType(err error) error {
	if err == nil {
		return nil
	}
	var pErr *PathError
	if !errors.As(err, &pErr) {
		return err
	}
	var mapped error
	switch {
	// File exists
	case errors.Is(pErr.Err, unix.EEXIST):
		mapped = ErrExist
	// Is a directory
	case errors.Is(pErr.Err, unix.EISDIR):
		mapped = ErrIsDirectory
	// Not a directory
	case errors.Is(pErr.Err, unix.ENOTDIR):
		mapped = ErrNotDirectory
	// No such file or directory
	case errors.Is(pErr.Err, unix.ENOENT):
		mapped = ErrNotExist
	// Operation not permitted
	case errors.Is(pErr.Err, unix.EPERM), errors.Is(pErr.Err, unix.EACCES):
		mapped = ErrPermission
	// Invalid cross-device link, or too many levels of symbolic links
	case errors.Is(pErr.Err, unix.EXDEV), errors.Is(pErr.Err, unix.ELOOP):
		mapped = ErrBadPathResolution
	default:
		return err
	}
	return &PathError{Op: pErr.Op, Path: pErr.Path, Err: mapped}
}
