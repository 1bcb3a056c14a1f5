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
	"github.com/vfsengine/vfsengine/internal/vpath"
)

// InodeMeta is the metadata map Stat returns, and the per-inode shape
// shared by several other handlers.
type InodeMeta struct {
	Type  string `json:"type"`
	Mode  uint16 `json:"mode"`
	Uid   uint32 `json:"uid"`
	Gid   uint32 `json:"gid"`
	Size  int64  `json:"size"`
	Ctime int64  `json:"ctime"`
	Mtime int64  `json:"mtime"`
	Atime int64  `json:"atime"`
}

// InfoResult is the reply shape of the Info command.
type InfoResult struct {
	Files          int64 `json:"files"`
	Directories    int64 `json:"directories"`
	Symlinks       int64 `json:"symlinks"`
	TotalDataBytes int64 `json:"total_data_bytes"`
	TotalInodes    int64 `json:"total_inodes"`
}

// Info returns the aggregate counters of the filesystem. O(1).
func Info(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 0 {
		return nil, ErrWrongArity
	}
	return InfoResult{
		Files:          fs.Files,
		Directories:    fs.Dirs,
		Symlinks:       fs.Symlinks,
		TotalDataBytes: fs.TotalBytes,
		TotalInodes:    fs.TotalInodes(),
	}, nil
}

// Stat returns the metadata map for path, without following symlinks, or
// nil if the path does not exist.
func Stat(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
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

	return &InodeMeta{
		Type:  typeString(in.Type),
		Mode:  in.Mode,
		Uid:   in.Uid,
		Gid:   in.Gid,
		Size:  in.Size(),
		Ctime: in.CtimeMs,
		Mtime: in.MtimeMs,
		Atime: in.AtimeMs,
	}, nil
}

// Test reports whether path exists.
func Test(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 1 {
		return nil, ErrWrongArity
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}

	if fs.Lookup(path) != nil {
		return int64(1), nil
	}
	return int64(0), nil
}
