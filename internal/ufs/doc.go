// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 Matthew Penner

// Package ufs provides the platform primitives the transactional filesystem
// is built on top of. Only the operations that differ between operating
// systems live here: creating an empty file, creating an empty directory,
// detecting a symbolic link and removing one. Everything else is performed
// with the `os` package directly.
//
// A Driver is selected at build time, Unix-like systems get a driver backed by
// the `golang.org/x/sys/unix` package while Windows gets one approximating
// links as directories whose resolved target differs from themselves.
package ufs
