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

package vinode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/vbloom"
)

func testClock() clock.Clock {
	return clock.NewSimulatedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestNewDefaultModes(t *testing.T) {
	c := testClock()

	f := New(File, 0, 0, 0, c)
	assert.Equal(t, DefaultFileMode, f.Mode)

	d := New(Dir, 0, 0, 0, c)
	assert.Equal(t, DefaultDirMode, d.Mode)
	assert.Empty(t, d.Children)

	s := NewSymlink("/a/b", 0, 0, 0, c)
	assert.Equal(t, DefaultSymlinkMode, s.Mode)
	assert.Equal(t, "/a/b", s.Target)
}

func TestNewExplicitMode(t *testing.T) {
	c := testClock()
	f := New(File, 0600, 1, 2, c)
	assert.Equal(t, uint16(0600), f.Mode)
	assert.Equal(t, uint32(1), f.Uid)
	assert.Equal(t, uint32(2), f.Gid)
}

func TestNewTimestamps(t *testing.T) {
	sc := clock.NewSimulatedClock(time.Unix(100, 0))
	in := New(File, 0, 0, 0, sc)
	want := time.Unix(100, 0).UnixMilli()
	assert.Equal(t, want, in.CtimeMs)
	assert.Equal(t, want, in.MtimeMs)
	assert.Equal(t, want, in.AtimeMs)
}

func TestAddChildIdempotent(t *testing.T) {
	d := New(Dir, 0, 0, 0, testClock())

	assert.True(t, d.AddChild("a"))
	assert.True(t, d.AddChild("b"))
	assert.False(t, d.AddChild("a"))

	assert.Equal(t, []string{"a", "b"}, d.Children)
}

func TestRemoveChild(t *testing.T) {
	d := New(Dir, 0, 0, 0, testClock())
	d.AddChild("a")
	d.AddChild("b")

	assert.True(t, d.RemoveChild("a"))
	assert.False(t, d.RemoveChild("a"))
	assert.Equal(t, []string{"b"}, d.Children)
}

func TestHasChild(t *testing.T) {
	d := New(Dir, 0, 0, 0, testClock())
	d.AddChild("a")

	assert.True(t, d.HasChild("a"))
	assert.False(t, d.HasChild("missing"))
}

func TestSetRebuildsBloomAndSize(t *testing.T) {
	sc := clock.NewSimulatedClock(time.Unix(0, 0))
	f := New(File, 0, 0, 0, sc)

	sc.SetTime(time.Unix(10, 0))
	f.Set([]byte("hello world"), sc)

	assert.Equal(t, int64(len("hello world")), f.Size())
	assert.True(t, f.Bloom.MayContain("hello"))
	assert.Equal(t, time.Unix(10, 0).UnixMilli(), f.MtimeMs)
}

func TestAppendExtendsAndRebuildsBloom(t *testing.T) {
	sc := clock.NewSimulatedClock(time.Unix(0, 0))
	f := New(File, 0, 0, 0, sc)
	f.Set([]byte("hello "), sc)

	sc.SetTime(time.Unix(5, 0))
	f.Append([]byte("world"), sc)

	assert.Equal(t, "hello world", string(f.Content))
	assert.True(t, f.Bloom.MayContain("world"))
	assert.Equal(t, time.Unix(5, 0).UnixMilli(), f.MtimeMs)
}

func TestFreeClearsPayload(t *testing.T) {
	f := New(File, 0, 0, 0, testClock())
	f.Set([]byte("abc"), testClock())

	f.Free()

	assert.Nil(t, f.Content)
	assert.Equal(t, vbloom.Filter{}, f.Bloom)
}

func TestCloneDeepCopiesFile(t *testing.T) {
	c := testClock()
	f := New(File, 0, 0, 0, c)
	f.Set([]byte("abcdef"), c)

	clone := f.Clone()
	clone.Content[0] = 'z'

	require.NotEqual(t, f.Content[0], clone.Content[0])
	assert.True(t, clone.Bloom.MayContain("bcd"))
}

func TestCloneDeepCopiesDir(t *testing.T) {
	d := New(Dir, 0, 0, 0, testClock())
	d.AddChild("x")

	clone := d.Clone()
	clone.AddChild("y")

	assert.Equal(t, []string{"x"}, d.Children)
	assert.Equal(t, []string{"x", "y"}, clone.Children)
}
