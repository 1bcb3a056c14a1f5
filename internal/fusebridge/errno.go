// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fusebridge

import (
	"strings"

	"golang.org/x/sys/unix"
)

// ToErrno maps one of fsops' stable error strings (spec §7, §9) to the
// nearest POSIX errno, per the table in spec §6.
func ToErrno(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()

	switch {
	case contains(msg, "no such filesystem key"),
		contains(msg, "no such file or directory"),
		contains(msg, "no such directory"),
		contains(msg, "no such path"):
		return unix.ENOENT
	case contains(msg, "not a file"):
		return unix.EISDIR
	case contains(msg, "not a directory"), contains(msg, "parent path conflict"):
		return unix.ENOTDIR
	case contains(msg, "already exists"):
		return unix.EEXIST
	case contains(msg, "directory not empty"):
		return unix.ENOTEMPTY
	case contains(msg, "too many levels of symbolic links"):
		return unix.ELOOP
	case contains(msg, "path depth exceeds limit"),
		contains(msg, "mode must be"),
		contains(msg, "uid out of range"),
		contains(msg, "gid out of range"),
		contains(msg, "cannot move a directory into its own subtree"),
		contains(msg, "syntax error"),
		contains(msg, "WRONGTYPE"):
		return unix.EINVAL
	default:
		return unix.EIO
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}
