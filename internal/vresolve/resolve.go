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

// Package vresolve resolves symlink chains to their terminal path. See
// spec §4.5.
package vresolve

import (
	"errors"

	"github.com/vfsengine/vfsengine/internal/vfs"
	"github.com/vfsengine/vfsengine/internal/vinode"
	"github.com/vfsengine/vfsengine/internal/vpath"
)

// MaxIterations bounds symlink chain traversal; a chain still unresolved
// after this many hops is reported as a loop.
const MaxIterations = 40

// ErrLoop indicates a symlink chain did not terminate within MaxIterations.
var ErrLoop = errors.New("too many levels of symbolic links")

// ErrDepth indicates normalization failed partway through a symlink chain
// (a target that expands to a path deeper than vpath.MaxDepth).
var ErrDepth = errors.New("path depth exceeds limit")

// Resolve follows the symlink chain starting at path until it reaches a
// non-symlink or a path absent from fs.M, returning that terminal path. A
// path that is missing from the very start (not a symlink) is returned
// as-is: callers distinguish "missing" from "not a symlink" by looking it
// up themselves after Resolve returns.
func Resolve(fs *vfs.FS, path string) (string, error) {
	current := path

	for i := 0; i < MaxIterations; i++ {
		in := fs.Lookup(current)
		if in == nil || in.Type != vinode.Symlink {
			return current, nil
		}

		next, err := vpath.Join(vpath.Parent(current), in.Target)
		if err != nil {
			return "", ErrDepth
		}
		current = next
	}

	return "", ErrLoop
}
