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
	"errors"

	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/vfs"
	"github.com/vfsengine/vfsengine/internal/vinode"
	"github.com/vfsengine/vfsengine/internal/vpath"
)

// attach inserts in at path and links it into its parent's child list,
// bumping the parent's mtime. The caller must have already ensured the
// parent exists.
func attach(fs *vfs.FS, path string, in *vinode.Inode, c clock.Clock) {
	fs.Insert(path, in)
	parent := fs.Lookup(vpath.Parent(path))
	parent.AddChild(vpath.Basename(path))
	parent.MtimeMs = clock.NowMillis(c)
}

// Echo creates or overwrites a file's content, rejecting root. An APPEND
// token extends the file instead of replacing it.
func Echo(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, ErrWrongArity
	}

	append_ := false
	if len(args) == 3 {
		if !tokenEquals(args[2], "APPEND") {
			return nil, SyntaxError("APPEND")
		}
		append_ = true
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}
	if vpath.IsRoot(path) {
		return nil, ErrCannotWriteRoot
	}

	content := []byte(args[1])

	if existing := fs.Lookup(path); existing != nil {
		if existing.Type != vinode.File {
			return nil, ErrNotAFile
		}
		before := int64(len(existing.Content))
		if append_ {
			existing.Append(content, c)
		} else {
			existing.Set(content, c)
		}
		fs.TotalBytes += int64(len(existing.Content)) - before
		return "OK", nil
	}

	if err := fs.EnsureParents(path, c); err != nil {
		return nil, translateParentConflict(err)
	}

	in := vinode.New(vinode.File, 0, 0, 0, c)
	in.Set(content, c)
	attach(fs, path, in, c)

	return "OK", nil
}

// Append is Echo with an implicit APPEND, returning the new file size.
func Append(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 2 {
		return nil, ErrWrongArity
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}
	if vpath.IsRoot(path) {
		return nil, ErrCannotAppendRoot
	}

	content := []byte(args[1])

	if existing := fs.Lookup(path); existing != nil {
		if existing.Type != vinode.File {
			return nil, ErrNotAFile
		}
		before := int64(len(existing.Content))
		existing.Append(content, c)
		fs.TotalBytes += int64(len(existing.Content)) - before
		return existing.Size(), nil
	}

	if err := fs.EnsureParents(path, c); err != nil {
		return nil, translateParentConflict(err)
	}

	in := vinode.New(vinode.File, 0, 0, 0, c)
	in.Set(content, c)
	attach(fs, path, in, c)

	return in.Size(), nil
}

// Touch creates an empty file if missing, otherwise bumps mtime/atime.
func Touch(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 1 {
		return nil, ErrWrongArity
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}
	if vpath.IsRoot(path) {
		return nil, ErrCannotWriteRoot
	}

	if existing := fs.Lookup(path); existing != nil {
		now := clock.NowMillis(c)
		existing.MtimeMs = now
		existing.AtimeMs = now
		return "OK", nil
	}

	if err := fs.EnsureParents(path, c); err != nil {
		return nil, translateParentConflict(err)
	}

	in := vinode.New(vinode.File, 0, 0, 0, c)
	attach(fs, path, in, c)

	return "OK", nil
}

// Mkdir creates a directory, optionally creating missing ancestors when
// PARENTS is given. It is idempotent on an existing directory iff PARENTS
// is set.
func Mkdir(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, ErrWrongArity
	}

	parents := false
	if len(args) == 2 {
		if !tokenEquals(args[1], "PARENTS") {
			return nil, SyntaxError("PARENTS")
		}
		parents = true
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}

	if existing := fs.Lookup(path); existing != nil {
		if existing.Type == vinode.Dir && parents {
			return "OK", nil
		}
		return nil, ErrPathExists
	}

	if parents {
		if err := fs.EnsureParents(path, c); err != nil {
			return nil, translateParentConflict(err)
		}
	} else {
		parent := fs.Lookup(vpath.Parent(path))
		if parent == nil || parent.Type != vinode.Dir {
			return nil, ErrParentConflict
		}
	}

	in := vinode.New(vinode.Dir, 0, 0, 0, c)
	attach(fs, path, in, c)

	return "OK", nil
}

// Rm deletes path, recursing depth-first when RECURSIVE is given. Missing
// paths are a no-op success (0). The root cannot be deleted.
func Rm(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, ErrWrongArity
	}

	recursive := false
	if len(args) == 2 {
		if !tokenEquals(args[1], "RECURSIVE") {
			return nil, SyntaxError("RECURSIVE")
		}
		recursive = true
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}
	if vpath.IsRoot(path) {
		return nil, ErrCannotDeleteRoot
	}

	in := fs.Lookup(path)
	if in == nil {
		return int64(0), nil
	}

	if in.Type == vinode.Dir && len(in.Children) > 0 {
		if !recursive {
			return nil, ErrDirNotEmpty
		}
		removeSubtree(fs, path, in, c)
	} else {
		removed := fs.Remove(path)
		removed.Free()
	}

	parent := fs.Lookup(vpath.Parent(path))
	parent.RemoveChild(vpath.Basename(path))
	parent.MtimeMs = clock.NowMillis(c)

	return int64(1), nil
}

// removeSubtree depth-first deletes every descendant of dir (already
// looked up at path), snapshotting each directory's child list before
// recursing since the list mutates as children are removed, and then
// removes path itself from M.
func removeSubtree(fs *vfs.FS, path string, dir *vinode.Inode, c clock.Clock) {
	children := append([]string(nil), dir.Children...)
	for _, name := range children {
		childPath, _ := vpath.Join(path, name)
		child := fs.Lookup(childPath)
		if child == nil {
			continue
		}
		if child.Type == vinode.Dir {
			removeSubtree(fs, childPath, child, c)
		}
		removed := fs.Remove(childPath)
		if removed != nil {
			removed.Free()
		}
	}

	removed := fs.Remove(path)
	if removed != nil {
		removed.Free()
	}
}

// Chmod sets the permission bits on path without following symlinks.
func Chmod(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 2 {
		return nil, ErrWrongArity
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}

	mode, err := parseMode(args[1])
	if err != nil {
		return nil, err
	}

	in := fs.Lookup(path)
	if in == nil {
		return nil, ErrNoSuchFile
	}

	in.Mode = mode
	return "OK", nil
}

// Chown sets uid (and optionally gid) on path without following symlinks.
func Chown(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, ErrWrongArity
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}

	uid, err := parseUid(args[1])
	if err != nil {
		return nil, err
	}

	in := fs.Lookup(path)
	if in == nil {
		return nil, ErrNoSuchFile
	}

	in.Uid = uid
	if len(args) == 3 {
		gid, err := parseGid(args[2])
		if err != nil {
			return nil, err
		}
		in.Gid = gid
	}

	return "OK", nil
}

// Ln creates a symlink at linkpath pointing at target, stored exactly as
// given.
func Ln(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 2 {
		return nil, ErrWrongArity
	}

	linkpath, err := vpath.Normalize(args[1])
	if err != nil {
		return nil, err
	}
	if vpath.IsRoot(linkpath) {
		return nil, ErrCannotSymlinkRoot
	}

	if fs.Lookup(linkpath) != nil {
		return nil, ErrPathExists
	}

	if err := fs.EnsureParents(linkpath, c); err != nil {
		return nil, translateParentConflict(err)
	}

	in := vinode.NewSymlink(args[0], 0, 0, 0, c)
	attach(fs, linkpath, in, c)

	return "OK", nil
}

// Truncate resolves symlinks on path then grows, shrinks, or clears its
// content to length.
func Truncate(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 2 {
		return nil, ErrWrongArity
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}

	length, err := parseLength(args[1])
	if err != nil {
		return nil, err
	}

	resolved, err := resolveOrError(fs, path)
	if err != nil {
		return nil, err
	}

	in := fs.Lookup(resolved)
	if in == nil {
		return nil, ErrNoSuchFile
	}
	if in.Type != vinode.File {
		return nil, ErrNotAFile
	}

	before := int64(len(in.Content))
	switch {
	case length == 0:
		in.Set(nil, c)
	case length < before:
		in.Set(in.Content[:length], c)
	case length > before:
		grown := make([]byte, length)
		copy(grown, in.Content)
		in.Set(grown, c)
	default:
		in.MtimeMs = clock.NowMillis(c)
	}
	fs.TotalBytes += int64(len(in.Content)) - before

	return "OK", nil
}

// Utimens sets atime/mtime on path without following symlinks. -1 in
// either field means "leave unchanged".
func Utimens(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 3 {
		return nil, ErrWrongArity
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}

	atime, err := parseTimeMs(args[1])
	if err != nil {
		return nil, err
	}
	mtime, err := parseTimeMs(args[2])
	if err != nil {
		return nil, err
	}

	in := fs.Lookup(path)
	if in == nil {
		return nil, ErrNoSuchFile
	}

	if atime != -1 {
		in.AtimeMs = atime
	}
	if mtime != -1 {
		in.MtimeMs = mtime
	}

	return "OK", nil
}

// translateParentConflict maps vfs.ErrParentConflict to this package's
// stable error text.
func translateParentConflict(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, vfs.ErrParentConflict) {
		return ErrParentConflict
	}
	return err
}
