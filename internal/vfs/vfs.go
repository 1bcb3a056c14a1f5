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

// Package vfs implements the filesystem object: the path→inode map plus its
// aggregate counters, and the insert/remove/ensure-parents bookkeeping every
// command handler in fsops builds on. See spec §3 and §4.4.
package vfs

import (
	"errors"
	"fmt"

	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/vinode"
	"github.com/vfsengine/vfsengine/internal/vpath"
)

// ErrParentConflict is returned by EnsureParents when an ancestor of the
// requested path already exists as a non-directory.
var ErrParentConflict = errors.New("parent path conflict")

// FS is the tuple (M, nf, nd, nl, B) from spec §3: a flat map from
// normalized absolute paths to inodes plus the derived, incrementally
// maintained counters.
//
// FS is not safe for concurrent use; callers that shard filesystems by key
// must serialize access per key (see internal/registry).
type FS struct {
	M map[string]*vinode.Inode

	Files      int64
	Dirs       int64
	Symlinks   int64
	TotalBytes int64
}

// New returns an empty filesystem object with no root entry. Callers follow
// the lifecycle protocol in spec §3: the first write materializes the root.
func New() *FS {
	return &FS{M: make(map[string]*vinode.Inode)}
}

// EnsureRoot inserts a root directory inode if one is not already present.
// It is the lifecycle hook a write command invokes before doing anything
// else on a possibly-fresh filesystem.
func (fs *FS) EnsureRoot(c clock.Clock) {
	if _, ok := fs.M[vpath.Root]; ok {
		return
	}
	fs.Insert(vpath.Root, vinode.New(vinode.Dir, 0, 0, 0, c))
}

// Lookup returns the inode stored at path, or nil if absent. O(1).
func (fs *FS) Lookup(path string) *vinode.Inode {
	return fs.M[path]
}

// Insert adds inode at path and updates the variant counter (and, for
// files, TotalBytes). It does not touch any parent's child list; callers
// that need a linked directory entry call the directory's AddChild
// themselves.
func (fs *FS) Insert(path string, in *vinode.Inode) {
	fs.M[path] = in
	switch in.Type {
	case vinode.File:
		fs.Files++
		fs.TotalBytes += int64(len(in.Content))
	case vinode.Dir:
		fs.Dirs++
	case vinode.Symlink:
		fs.Symlinks++
	}
}

// Remove deletes path from M and returns the removed inode (or nil if
// absent) so the caller can unlink it from its parent and free it.
// Counters (and TotalBytes, for files) are decremented.
func (fs *FS) Remove(path string) *vinode.Inode {
	in, ok := fs.M[path]
	if !ok {
		return nil
	}
	delete(fs.M, path)
	switch in.Type {
	case vinode.File:
		fs.Files--
		fs.TotalBytes -= int64(len(in.Content))
	case vinode.Dir:
		fs.Dirs--
	case vinode.Symlink:
		fs.Symlinks--
	}
	return in
}

// EnsureParents recursively ensures every ancestor directory of path
// exists, creating missing ones (with default mode, linked into their own
// parent's child list) as it goes. It returns ErrParentConflict if any
// ancestor exists as a non-directory.
func (fs *FS) EnsureParents(path string, c clock.Clock) error {
	if vpath.IsRoot(path) {
		return nil
	}
	fs.EnsureRoot(c)
	return fs.ensureDir(vpath.Parent(path), c)
}

// ensureDir ensures path exists and is a directory, recursing on its parent
// first.
func (fs *FS) ensureDir(path string, c clock.Clock) error {
	if vpath.IsRoot(path) {
		return nil
	}

	if existing := fs.Lookup(path); existing != nil {
		if existing.Type != vinode.Dir {
			return fmt.Errorf("%w: %s", ErrParentConflict, path)
		}
		return nil
	}

	parent := vpath.Parent(path)
	if err := fs.ensureDir(parent, c); err != nil {
		return err
	}

	dir := vinode.New(vinode.Dir, 0, 0, 0, c)
	fs.Insert(path, dir)

	parentInode := fs.Lookup(parent)
	parentInode.AddChild(vpath.Basename(path))
	parentInode.MtimeMs = clock.NowMillis(c)

	return nil
}

// MaybeDeleteKey reports whether the filesystem object has shrunk to just
// the root entry (or nothing) and should be dropped at the host-key level.
// Callers invoke this after every mutation that can remove entries; it does
// not itself mutate fs.
func (fs *FS) MaybeDeleteKey() bool {
	return fs.Files+fs.Dirs+fs.Symlinks <= 1
}

// TotalInodes returns the sum of all three variant counters.
func (fs *FS) TotalInodes() int64 {
	return fs.Files + fs.Dirs + fs.Symlinks
}
