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

// Package vinode implements the three inode shapes (file, directory,
// symlink) that back every path in a filesystem object, plus the
// constructors and mutators that keep their derived state (size, bloom,
// child-list) consistent.
package vinode

import (
	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/vbloom"
)

// Type tags the shape of an inode's payload.
type Type uint8

const (
	File Type = iota
	Dir
	Symlink
)

func (t Type) String() string {
	switch t {
	case File:
		return "file"
	case Dir:
		return "dir"
	case Symlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Default permission bits applied when a caller passes mode 0 to a
// constructor.
const (
	DefaultFileMode    uint16 = 0644
	DefaultDirMode     uint16 = 0755
	DefaultSymlinkMode uint16 = 0777
)

// Inode is a tagged union over the three variants described in spec.md §3.
// Every inode carries the common metadata fields; the payload fields below
// are meaningful only for the matching Type.
type Inode struct {
	Type Type

	Mode uint16 // 12-bit permission bits
	Uid  uint32
	Gid  uint32

	CtimeMs int64
	MtimeMs int64
	AtimeMs int64

	// File payload.
	Content []byte
	Bloom   vbloom.Filter

	// Dir payload. Order is insertion order and must be preserved across
	// mutations (spec.md invariant: no duplicate names).
	Children []string

	// Symlink payload: the target exactly as given (absolute or relative).
	Target string
}

// New creates an inode of the given type and mode. A zero mode selects the
// type's default permission bits. Timestamps are set to the clock's current
// time.
func New(t Type, mode uint16, uid, gid uint32, c clock.Clock) *Inode {
	if mode == 0 {
		switch t {
		case File:
			mode = DefaultFileMode
		case Dir:
			mode = DefaultDirMode
		case Symlink:
			mode = DefaultSymlinkMode
		}
	}

	now := clock.NowMillis(c)
	in := &Inode{
		Type:    t,
		Mode:    mode,
		Uid:     uid,
		Gid:     gid,
		CtimeMs: now,
		MtimeMs: now,
		AtimeMs: now,
	}

	if t == Dir {
		in.Children = make([]string, 0)
	}

	return in
}

// NewSymlink creates a symlink inode whose target is stored exactly as
// given.
func NewSymlink(target string, mode uint16, uid, gid uint32, c clock.Clock) *Inode {
	in := New(Symlink, mode, uid, gid, c)
	in.Target = target
	return in
}

// AddChild appends name to the directory's child list if it is not already
// present. It reports whether the list was changed.
func (in *Inode) AddChild(name string) bool {
	if in.HasChild(name) {
		return false
	}
	in.Children = append(in.Children, name)
	return true
}

// RemoveChild removes name from the directory's child list. It reports
// whether anything was removed.
func (in *Inode) RemoveChild(name string) bool {
	for i, c := range in.Children {
		if c == name {
			in.Children = append(in.Children[:i], in.Children[i+1:]...)
			return true
		}
	}
	return false
}

// HasChild reports whether name is present in the directory's child list.
func (in *Inode) HasChild(name string) bool {
	for _, c := range in.Children {
		if c == name {
			return true
		}
	}
	return false
}

// Set replaces the file's content, rebuilding the trigram bloom filter and
// updating mtime.
func (in *Inode) Set(content []byte, c clock.Clock) {
	in.Content = content
	in.Bloom = vbloom.Build(in.Content)
	in.MtimeMs = clock.NowMillis(c)
}

// Append extends the file's content, rebuilding the trigram bloom filter and
// updating mtime.
func (in *Inode) Append(content []byte, c clock.Clock) {
	in.Content = append(in.Content, content...)
	in.Bloom = vbloom.Build(in.Content)
	in.MtimeMs = clock.NowMillis(c)
}

// Size returns the inode's spec.md "size" field: content length for files,
// child count for directories, and target length for symlinks.
func (in *Inode) Size() int64 {
	switch in.Type {
	case File:
		return int64(len(in.Content))
	case Dir:
		return int64(len(in.Children))
	default:
		return int64(len(in.Target))
	}
}

// Free releases the inode's payload. It exists for symmetry with the
// explicit alloc/free ownership model described in spec.md §3; in Go the
// garbage collector does the actual reclamation once the last reference
// (this one) is dropped.
func (in *Inode) Free() {
	in.Content = nil
	in.Children = nil
	in.Target = ""
	in.Bloom = vbloom.Filter{}
}

// Clone returns a deep copy of in, preserving mode/uid/gid and all three
// timestamps. Used by Cp to duplicate inodes without aliasing their
// payloads.
func (in *Inode) Clone() *Inode {
	out := &Inode{
		Type:    in.Type,
		Mode:    in.Mode,
		Uid:     in.Uid,
		Gid:     in.Gid,
		CtimeMs: in.CtimeMs,
		MtimeMs: in.MtimeMs,
		AtimeMs: in.AtimeMs,
		Target:  in.Target,
	}

	if in.Content != nil {
		out.Content = append([]byte(nil), in.Content...)
		out.Bloom = vbloom.Build(out.Content)
	}

	if in.Children != nil {
		out.Children = append([]string(nil), in.Children...)
	}

	return out
}
