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

// Package vsnapshot implements the versioned binary codec that serializes
// and restores an entire filesystem object. See spec §4.7.
package vsnapshot

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vfsengine/vfsengine/internal/vbloom"
	"github.com/vfsengine/vfsengine/internal/vfs"
	"github.com/vfsengine/vfsengine/internal/vinode"
)

// Version is the only snapshot format tag this codec writes or accepts.
const Version = 0

// Save writes fs to w in the versioned binary layout from spec §4.7. Bloom
// filters are never persisted; they are rebuilt on Load.
func Save(w io.Writer, fs *vfs.FS) error {
	bw := bufio.NewWriter(w)

	if err := writeU8(bw, Version); err != nil {
		return err
	}
	if err := writeU64(bw, uint64(len(fs.M))); err != nil {
		return err
	}

	for path, in := range fs.M {
		if err := writeInode(bw, path, in); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func writeInode(w *bufio.Writer, path string, in *vinode.Inode) error {
	if err := writeString(w, path); err != nil {
		return err
	}
	if err := writeU8(w, uint8(in.Type)); err != nil {
		return err
	}
	if err := writeU16(w, in.Mode); err != nil {
		return err
	}
	if err := writeU32(w, in.Uid); err != nil {
		return err
	}
	if err := writeU32(w, in.Gid); err != nil {
		return err
	}
	if err := writeI64(w, in.CtimeMs); err != nil {
		return err
	}
	if err := writeI64(w, in.MtimeMs); err != nil {
		return err
	}
	if err := writeI64(w, in.AtimeMs); err != nil {
		return err
	}

	switch in.Type {
	case vinode.File:
		if err := writeU64(w, uint64(len(in.Content))); err != nil {
			return err
		}
		if len(in.Content) > 0 {
			if _, err := w.Write(in.Content); err != nil {
				return err
			}
		}
	case vinode.Dir:
		if err := writeU64(w, uint64(len(in.Children))); err != nil {
			return err
		}
		for _, child := range in.Children {
			if err := writeString(w, child); err != nil {
				return err
			}
		}
	case vinode.Symlink:
		if err := writeString(w, in.Target); err != nil {
			return err
		}
	}

	return nil
}

// Load reads a snapshot from r and returns the reconstructed filesystem.
// Bloom filters are recomputed from file content; counters and total bytes
// are rebuilt from the stream. On any I/O or format error, the partially
// constructed object is discarded and the error is returned.
func Load(r io.Reader) (*vfs.FS, error) {
	br := bufio.NewReader(r)

	version, err := readU8(br)
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, fmt.Errorf("vsnapshot: unsupported version %d", version)
	}

	count, err := readU64(br)
	if err != nil {
		return nil, err
	}

	fs := vfs.New()

	for i := uint64(0); i < count; i++ {
		path, in, err := readInode(br)
		if err != nil {
			return nil, err
		}
		fs.Insert(path, in)
	}

	return fs, nil
}

func readInode(r *bufio.Reader) (string, *vinode.Inode, error) {
	path, err := readString(r)
	if err != nil {
		return "", nil, err
	}

	typ, err := readU8(r)
	if err != nil {
		return "", nil, err
	}
	mode, err := readU16(r)
	if err != nil {
		return "", nil, err
	}
	uid, err := readU32(r)
	if err != nil {
		return "", nil, err
	}
	gid, err := readU32(r)
	if err != nil {
		return "", nil, err
	}
	ctime, err := readI64(r)
	if err != nil {
		return "", nil, err
	}
	mtime, err := readI64(r)
	if err != nil {
		return "", nil, err
	}
	atime, err := readI64(r)
	if err != nil {
		return "", nil, err
	}

	in := &vinode.Inode{
		Type:    vinode.Type(typ),
		Mode:    mode,
		Uid:     uid,
		Gid:     gid,
		CtimeMs: ctime,
		MtimeMs: mtime,
		AtimeMs: atime,
	}

	switch in.Type {
	case vinode.File:
		size, err := readU64(r)
		if err != nil {
			return "", nil, err
		}
		if size > 0 {
			content := make([]byte, size)
			if _, err := io.ReadFull(r, content); err != nil {
				return "", nil, err
			}
			in.Content = content
		}
		in.Bloom = vbloom.Build(in.Content)
	case vinode.Dir:
		childCount, err := readU64(r)
		if err != nil {
			return "", nil, err
		}
		children := make([]string, childCount)
		for i := range children {
			c, err := readString(r)
			if err != nil {
				return "", nil, err
			}
			children[i] = c
		}
		in.Children = children
	case vinode.Symlink:
		target, err := readString(r)
		if err != nil {
			return "", nil, err
		}
		in.Target = target
	}

	return path, in, nil
}

func writeU8(w io.Writer, v uint8) error  { return binary.Write(w, binary.LittleEndian, v) }
func writeU16(w io.Writer, v uint16) error { return binary.Write(w, binary.LittleEndian, v) }
func writeU32(w io.Writer, v uint32) error { return binary.Write(w, binary.LittleEndian, v) }
func writeU64(w io.Writer, v uint64) error { return binary.Write(w, binary.LittleEndian, v) }
func writeI64(w io.Writer, v int64) error  { return binary.Write(w, binary.LittleEndian, v) }

func writeString(w *bufio.Writer, s string) error {
	if err := writeU64(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func readU8(r io.Reader) (uint8, error) {
	var v uint8
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readU16(r io.Reader) (uint16, error) {
	var v uint16
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readU32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readU64(r io.Reader) (uint64, error) {
	var v uint64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readI64(r io.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readString(r *bufio.Reader) (string, error) {
	n, err := readU64(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
