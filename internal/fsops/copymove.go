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

	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/vfs"
	"github.com/vfsengine/vfsengine/internal/vinode"
	"github.com/vfsengine/vfsengine/internal/vpath"
)

// Cp copies src to dst. Directory sources require RECURSIVE. An ATOMIC
// token (only meaningful alongside RECURSIVE) builds the copied subtree
// under a hidden staging path and attaches it with a single subtree rename,
// so a mid-copy failure never leaves a partial destination visible — see
// SPEC_FULL.md §4.10.
func Cp(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) < 2 || len(args) > 4 {
		return nil, ErrWrongArity
	}

	recursive := false
	atomic := false
	for _, tok := range args[2:] {
		switch {
		case tokenEquals(tok, "RECURSIVE"):
			recursive = true
		case tokenEquals(tok, "ATOMIC"):
			atomic = true
		default:
			return nil, SyntaxError("RECURSIVE")
		}
	}
	if atomic && !recursive {
		return nil, SyntaxError("RECURSIVE")
	}

	src, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}
	dst, err := vpath.Normalize(args[1])
	if err != nil {
		return nil, err
	}

	srcIn := fs.Lookup(src)
	if srcIn == nil {
		return nil, ErrNoSuchFile
	}
	if fs.Lookup(dst) != nil {
		return nil, ErrDstExists
	}
	if srcIn.Type == vinode.Dir && !recursive {
		return nil, ErrSrcIsDir
	}

	if atomic {
		staging := stagingPath(dst)
		if err := fs.EnsureParents(staging, c); err != nil {
			return nil, translateParentConflict(err)
		}
		if err := copyTree(fs, src, staging, c); err != nil {
			cleanupStaging(fs, staging)
			return nil, ErrCopyFailed
		}
		if err := fs.EnsureParents(dst, c); err != nil {
			cleanupStaging(fs, staging)
			return nil, translateParentConflict(err)
		}

		renameSubtree(fs, staging, dst, c)
		return "OK", nil
	}

	if err := fs.EnsureParents(dst, c); err != nil {
		return nil, translateParentConflict(err)
	}

	if err := copyTree(fs, src, dst, c); err != nil {
		return nil, ErrCopyFailed
	}

	return "OK", nil
}

var stagingCounter int64

// stagingPath derives a staging location for an atomic copy, rooted under
// the hidden /.vfs-staging prefix.
func stagingPath(dst string) string {
	stagingCounter++
	return "/.vfs-staging/" + strings.ReplaceAll(dst, "/", "_") + "-" + strconv.FormatInt(stagingCounter, 10)
}

// copyTree clones srcIn (already known to exist) to dst, recursing for
// directories. mode/uid/gid and all three timestamps are preserved; file
// copies rebuild their own bloom.
func copyTree(fs *vfs.FS, src, dst string, c clock.Clock) error {
	srcIn := fs.Lookup(src)
	if srcIn == nil {
		return ErrCopyFailed
	}

	clone := srcIn.Clone()
	attach(fs, dst, clone, c)
	clone.CtimeMs = srcIn.CtimeMs
	clone.MtimeMs = srcIn.MtimeMs
	clone.AtimeMs = srcIn.AtimeMs

	if srcIn.Type != vinode.Dir {
		return nil
	}

	for _, name := range srcIn.Children {
		childSrc, _ := vpath.Join(src, name)
		childDst, _ := vpath.Join(dst, name)
		if err := copyTree(fs, childSrc, childDst, c); err != nil {
			return err
		}
	}

	return nil
}

// cleanupStaging removes a partially built staging subtree after a failed
// atomic copy.
func cleanupStaging(fs *vfs.FS, staging string) {
	in := fs.Lookup(staging)
	if in == nil {
		return
	}
	if in.Type == vinode.Dir {
		removeSubtree(fs, staging, in, clock.RealClock{})
		return
	}
	removed := fs.Remove(staging)
	if removed != nil {
		removed.Free()
	}
}

// Mv renames src to dst, rewriting every descendant key atomically when src
// is a directory. Ownership of inodes transfers without cloning.
func Mv(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 2 {
		return nil, ErrWrongArity
	}

	src, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}
	dst, err := vpath.Normalize(args[1])
	if err != nil {
		return nil, err
	}
	if vpath.IsRoot(src) {
		return nil, ErrCannotMoveRoot
	}

	srcIn := fs.Lookup(src)
	if srcIn == nil {
		return nil, ErrNoSuchFile
	}
	if fs.Lookup(dst) != nil {
		return nil, ErrDstExists
	}
	if srcIn.Type == vinode.Dir && vpath.HasPrefix(dst, src) {
		return nil, ErrMoveIntoOwnSubtree
	}

	if err := fs.EnsureParents(dst, c); err != nil {
		return nil, translateParentConflict(err)
	}

	renameSubtree(fs, src, dst, c)

	return "OK", nil
}

// renameSubtree moves src (and, if it is a directory, every descendant
// path) to dst without cloning any inode. It collects every affected key
// into a snapshot first to avoid mutating M while iterating it, then
// performs the remove/insert pairs, detaches src's basename from its old
// parent's child list, and attaches dst's basename to its new parent's.
// Both parent lookups happen before the snapshot loop runs so a src/dst
// pair sharing a parent directory still mutates the same *vinode.Inode.
func renameSubtree(fs *vfs.FS, src, dst string, c clock.Clock) {
	oldParent := fs.Lookup(vpath.Parent(src))
	newParent := fs.Lookup(vpath.Parent(dst))

	prefix := src + "/"
	keys := make([]string, 0, 8)
	for p := range fs.M {
		if p == src || strings.HasPrefix(p, prefix) {
			keys = append(keys, p)
		}
	}

	for _, p := range keys {
		suffix := strings.TrimPrefix(p, src)
		newPath := dst + suffix

		in := fs.M[p]
		delete(fs.M, p)
		fs.M[newPath] = in
	}

	oldParent.RemoveChild(vpath.Basename(src))
	oldParent.MtimeMs = clock.NowMillis(c)

	newParent.AddChild(vpath.Basename(dst))
	newParent.MtimeMs = clock.NowMillis(c)
}
