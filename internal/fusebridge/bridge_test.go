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

package fusebridge

import (
	"context"
	"testing"
	"time"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/registry"
)

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()
	reg := registry.New(clock.NewSimulatedClock(time.Unix(0, 0)), nil)
	return New(reg, Options{Key: "k", AttrCacheTTL: time.Second, DirCacheTTL: time.Second})
}

func TestCreateFileLookUpAndReadWrite(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	createOp := &fuseops.CreateFileOp{Parent: fuseops.RootInodeID, Name: "a.txt", Mode: 0644}
	require.NoError(t, b.CreateFile(ctx, createOp))
	assert.NotZero(t, createOp.Handle)

	writeOp := &fuseops.WriteFileOp{Handle: createOp.Handle, Offset: 0, Data: []byte("hello")}
	require.NoError(t, b.WriteFile(ctx, writeOp))

	readOp := &fuseops.ReadFileOp{Handle: createOp.Handle, Offset: 0, Dst: make([]byte, 16)}
	require.NoError(t, b.ReadFile(ctx, readOp))
	assert.Equal(t, "hello", string(readOp.Dst[:readOp.BytesRead]))

	lookupOp := &fuseops.LookUpInodeOp{Parent: fuseops.RootInodeID, Name: "a.txt"}
	require.NoError(t, b.LookUpInode(ctx, lookupOp))
	assert.Equal(t, createOp.Entry.Child, lookupOp.Entry.Child)
}

func TestMkDirAndReadDir(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	mkdirOp := &fuseops.MkDirOp{Parent: fuseops.RootInodeID, Name: "sub", Mode: 0755}
	require.NoError(t, b.MkDir(ctx, mkdirOp))

	openOp := &fuseops.OpenDirOp{Inode: fuseops.RootInodeID}
	require.NoError(t, b.OpenDir(ctx, openOp))

	readOp := &fuseops.ReadDirOp{Handle: openOp.Handle, Offset: 0, Dst: make([]byte, 4096)}
	require.NoError(t, b.ReadDir(ctx, readOp))
	assert.Greater(t, readOp.BytesRead, 0)
}

func TestLookUpMissingReturnsError(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	lookupOp := &fuseops.LookUpInodeOp{Parent: fuseops.RootInodeID, Name: "missing"}
	assert.Error(t, b.LookUpInode(ctx, lookupOp))
}

func TestSetInodeAttributesTruncates(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	createOp := &fuseops.CreateFileOp{Parent: fuseops.RootInodeID, Name: "b.txt", Mode: 0644}
	require.NoError(t, b.CreateFile(ctx, createOp))

	writeOp := &fuseops.WriteFileOp{Handle: createOp.Handle, Offset: 0, Data: []byte("0123456789")}
	require.NoError(t, b.WriteFile(ctx, writeOp))

	size := uint64(4)
	setOp := &fuseops.SetInodeAttributesOp{Inode: createOp.Entry.Child, Size: &size}
	require.NoError(t, b.SetInodeAttributes(ctx, setOp))
	assert.EqualValues(t, 4, setOp.Attributes.Size)
}
