// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package buildinfo

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = ""
	Date    = ""

	UserAgent = ""
)

func init() {
	UserAgent = fmt.Sprintf("gazelle/%s (%s %s)", Version, runtime.GOOS, runtime.GOARCH)
}

// Info returns a human readable build description.
func Info() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuild date: %s\n", Version, Commit, Date)
}
