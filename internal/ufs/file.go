// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

package ufs

import (
	iofs "io/fs"
)

// FileMode represents a file's mode and permission bits.
type FileMode = iofs.FileMode

// Special mode bits carried through to the syscall by syscallMode.
const (
	ModeSetuid = iofs.ModeSetuid
	ModeSetgid = iofs.ModeSetgid
	ModeSticky = iofs.ModeSticky
)

const (
	// DefaultFileMode is used for new files when no mode is configured.
	DefaultFileMode FileMode = 0o644
	// DefaultDirectoryMode is used for new directories when no mode is
	// configured.
	DefaultDirectoryMode FileMode = 0o755
)
