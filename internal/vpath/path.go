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

// Package vpath normalizes and manipulates the absolute, '/'-separated paths
// that key every inode in a filesystem object. Every path stored in the
// filesystem's map has already been through Normalize.
package vpath

import (
	"errors"
	"strings"
)

// MaxDepth bounds the number of path components Normalize will accept.
// Overflowing it is an error, never a silent truncation.
const MaxDepth = 256

// ErrDepthExceeded is returned by Normalize when an input decomposes into
// more than MaxDepth components after '.'/'..' resolution.
var ErrDepthExceeded = errors.New("path depth exceeds limit")

// Root is the canonical root path.
const Root = "/"

// Normalize resolves '.' and '..' components, collapses runs of '/', and
// strips any trailing slash except for the root. An empty input normalizes
// to the root. The result always starts with '/'.
func Normalize(input string) (string, error) {
	parts := strings.Split(input, "/")
	stack := make([]string, 0, len(parts))

	for _, p := range parts {
		switch p {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, p)
		}
	}

	if len(stack) > MaxDepth {
		return "", ErrDepthExceeded
	}

	if len(stack) == 0 {
		return Root, nil
	}

	return Root + strings.Join(stack, "/"), nil
}

// IsRoot reports whether p is exactly the root path.
func IsRoot(p string) bool {
	return p == Root
}

// Parent returns the normalized parent of p. The parent of the root is the
// root itself.
func Parent(p string) string {
	if IsRoot(p) {
		return Root
	}

	idx := strings.LastIndexByte(p, '/')
	if idx <= 0 {
		return Root
	}

	return p[:idx]
}

// Basename returns the final path component of p. The basename of the root
// is the root itself.
func Basename(p string) string {
	if IsRoot(p) {
		return Root
	}

	idx := strings.LastIndexByte(p, '/')
	return p[idx+1:]
}

// Join joins b onto a, normalizing the result. If b begins with '/' it is
// treated as absolute and a is ignored.
func Join(a, b string) (string, error) {
	if strings.HasPrefix(b, "/") {
		return Normalize(b)
	}

	return Normalize(a + "/" + b)
}

// HasPrefix reports whether p equals q or is contained within the subtree
// rooted at q. It is used to reject moving a directory into its own
// descendant.
func HasPrefix(p, q string) bool {
	if p == q {
		return true
	}

	return strings.HasPrefix(p, q+"/")
}
