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
	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/vfs"
	"github.com/vfsengine/vfsengine/internal/vinode"
	"github.com/vfsengine/vfsengine/internal/vpath"
	"github.com/vfsengine/vfsengine/internal/vresolve"
)

// Cat resolves path's symlink chain (if any), then returns the target
// file's content. It updates atime on success.
func Cat(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 1 {
		return nil, ErrWrongArity
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}

	resolved, err := resolveOrError(fs, path)
	if err != nil {
		return nil, err
	}

	in := fs.Lookup(resolved)
	if in == nil {
		return nil, nil
	}
	if in.Type != vinode.File {
		return nil, ErrNotAFile
	}

	in.AtimeMs = clock.NowMillis(c)
	return string(in.Content), nil
}

// Readlink returns a symlink's raw target without following it.
func Readlink(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 1 {
		return nil, ErrWrongArity
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}

	in := fs.Lookup(path)
	if in == nil {
		return nil, nil
	}
	if in.Type != vinode.Symlink {
		return nil, ErrNotASymlink
	}

	return in.Target, nil
}

// resolveOrError runs vresolve.Resolve and translates its loop/depth
// sentinels into this package's stable error strings.
func resolveOrError(fs *vfs.FS, path string) (string, error) {
	resolved, err := vresolve.Resolve(fs, path)
	if err == nil {
		return resolved, nil
	}
	switch err {
	case vresolve.ErrLoop:
		return "", ErrTooManySymlinks
	case vresolve.ErrDepth:
		return "", ErrDepthExceeded
	default:
		return "", err
	}
}
