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

package fsops

import (
	"strconv"
	"strings"

	"github.com/vfsengine/vfsengine/internal/vinode"
)

// tokenEquals compares a keyword token case-insensitively, per spec §6
// ("optional tokens ... are case-insensitive keywords").
func tokenEquals(s, keyword string) bool {
	return strings.EqualFold(s, keyword)
}

// parseMode strictly parses a mode argument as octal, rejecting anything
// outside [0000, 07777].
func parseMode(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil || v > 07777 {
		return 0, ErrModeRange
	}
	return uint16(v), nil
}

// parseUid parses a uid argument, rejecting negative values and anything
// exceeding a 32-bit unsigned range.
func parseUid(s string) (uint32, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 || v > int64(^uint32(0)) {
		return 0, ErrUidRange
	}
	return uint32(v), nil
}

// parseGid parses a gid argument with the same bounds as parseUid.
func parseGid(s string) (uint32, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 || v > int64(^uint32(0)) {
		return 0, ErrGidRange
	}
	return uint32(v), nil
}

// parseTimeMs parses an atime_ms/mtime_ms argument. -1 is a valid sentinel
// meaning "leave unchanged" and is returned as-is.
func parseTimeMs(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrTimeNotInt
	}
	return v, nil
}

// parseLength parses a non-negative Truncate length.
func parseLength(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, ErrLengthNeg
	}
	return v, nil
}

// parseDepth parses a non-negative Tree DEPTH argument.
func parseDepth(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, ErrDepthNeg
	}
	return v, nil
}

// parseTypeArg maps a TYPE token to an inode variant.
func parseTypeArg(s string) (vinode.Type, error) {
	switch strings.ToLower(s) {
	case "file":
		return vinode.File, nil
	case "dir":
		return vinode.Dir, nil
	case "symlink":
		return vinode.Symlink, nil
	default:
		return 0, ErrTypeArg
	}
}

// typeString renders an inode type the way Stat/Tree/Find report it.
func typeString(t vinode.Type) string {
	switch t {
	case vinode.File:
		return "file"
	case vinode.Dir:
		return "dir"
	case vinode.Symlink:
		return "symlink"
	default:
		return "unknown"
	}
}
