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

package vsnapshot

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/vfs"
	"github.com/vfsengine/vfsengine/internal/vinode"
	"github.com/vfsengine/vfsengine/internal/vmemory"
)

func buildSample(t *testing.T) *vfs.FS {
	t.Helper()
	c := clock.NewSimulatedClock(time.Unix(100, 0))
	fs := vfs.New()
	fs.EnsureRoot(c)

	file := vinode.New(vinode.File, 0, 0, 0, c)
	file.Set([]byte("hello world"), c)
	fs.Insert("/f.txt", file)
	root := fs.Lookup("/")
	root.AddChild("f.txt")

	dir := vinode.New(vinode.Dir, 0, 0, 0, c)
	fs.Insert("/d", dir)
	root.AddChild("d")

	link := vinode.NewSymlink("/f.txt", 0, 0, 0, c)
	fs.Insert("/link", link)
	root.AddChild("link")

	return fs
}

func TestSaveLoadRoundTrip(t *testing.T) {
	fs := buildSample(t)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, fs))

	loaded, err := Load(&buf)
	require.NoError(t, err)

	assert.Equal(t, fs.Files, loaded.Files)
	assert.Equal(t, fs.Dirs, loaded.Dirs)
	assert.Equal(t, fs.Symlinks, loaded.Symlinks)
	assert.Equal(t, fs.TotalBytes, loaded.TotalBytes)

	assert.Equal(t, vmemory.Digest(fs), vmemory.Digest(loaded))

	f := loaded.Lookup("/f.txt")
	require.NotNil(t, f)
	assert.Equal(t, "hello world", string(f.Content))
	assert.True(t, f.Bloom.MayContain("hello"))
}

func TestLoadRejectsWrongVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(7)

	_, err := Load(&buf)
	require.Error(t, err)
}

func TestLoadTruncatedStreamFails(t *testing.T) {
	fs := buildSample(t)
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, fs))

	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-5])
	_, err := Load(truncated)
	require.Error(t, err)
}
