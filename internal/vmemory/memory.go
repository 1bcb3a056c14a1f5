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

// Package vmemory implements the approximate memory accounting and the
// content-hash digest used to check replication equality. See spec §4.8.
package vmemory

import (
	"crypto/sha256"
	"sort"
	"unsafe"

	"github.com/vfsengine/vfsengine/internal/vfs"
	"github.com/vfsengine/vfsengine/internal/vinode"
)

// entryOverhead approximates the per-map-entry bookkeeping cost (hash
// bucket slot, key string header) on top of the inode struct itself.
const entryOverhead = 48

var inodeSize = int64(unsafe.Sizeof(vinode.Inode{}))
var objectSize = int64(unsafe.Sizeof(vfs.FS{}))

// Estimate returns a lower-bound approximation of fs's memory footprint:
// the object header, plus per-inode overhead, plus raw file content bytes.
// It makes no commitment to exactness.
func Estimate(fs *vfs.FS) int64 {
	return objectSize + fs.TotalInodes()*(inodeSize+entryOverhead) + fs.TotalBytes
}

// Digest returns a content hash that is identical for any two filesystems
// that are semantically equal: same inode set, metadata, and content. It
// iterates paths in sorted order (rather than the map's indeterminate
// order) specifically so two in-memory representations of the same logical
// state hash identically regardless of insertion history.
func Digest(fs *vfs.FS) [32]byte {
	paths := make([]string, 0, len(fs.M))
	for p := range fs.M {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, p := range paths {
		in := fs.M[p]
		h.Write([]byte(p))
		h.Write([]byte{0})
		h.Write([]byte{byte(in.Type)})
		var modeBuf [2]byte
		modeBuf[0] = byte(in.Mode)
		modeBuf[1] = byte(in.Mode >> 8)
		h.Write(modeBuf[:])
		if in.Type == vinode.File {
			h.Write(in.Content)
		}
		h.Write([]byte{0xff}) // sequence boundary
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
