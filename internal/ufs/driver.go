// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package ufs

// Driver represents the small set of filesystem primitives that behave
// differently depending on the host operating system.
type Driver interface {
	// CreateEmptyFile creates a new, empty regular file at path. The call
	// fails if anything already exists at that location.
	//
	// If there is an error, it will be of type *PathError.
	CreateEmptyFile(path string) error

	// CreateEmptyDirectory creates a new, empty directory at path. The parent
	// directory must already exist.
	//
	// If there is an error, it will be of type *PathError.
	CreateEmptyDirectory(path string) error

	// IsLink reports whether path is a symbolic link. The link itself is
	// inspected, the target it points to is never followed.
	IsLink(path string) bool

	// RemoveLink removes the symbolic link at path without touching the
	// target it points to.
	//
	// If there is an error, it will be of type *PathError.
	RemoveLink(path string) error
}

// Modes holds the permission bits applied to newly created entries.
type Modes struct {
	File      FileMode
	Directory FileMode
}

// withDefaults returns a copy of m with any zero values replaced by the
// package defaults.
func (m Modes) withDefaults() Modes {
	if m.File == 0 {
		m.File = DefaultFileMode
	}
	if m.Directory == 0 {
		m.Directory = DefaultDirectoryMode
	}
	return m
}
