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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/vfs"
	"github.com/vfsengine/vfsengine/internal/vpath"
)

func newFS(t *testing.T) (*vfs.FS, clock.Clock) {
	t.Helper()
	c := clock.NewSimulatedClock(time.Unix(0, 0))
	f := vfs.New()
	f.EnsureRoot(c)
	return f, c
}

func TestEchoCreatesFileAndInfoReflects(t *testing.T) {
	fs, c := newFS(t)

	_, err := Echo(fs, []string{"/a/b.txt", "hi"}, c)
	require.NoError(t, err)

	got, err := Test(fs, []string{"/a"}, c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	got, err = Test(fs, []string{"/a/b.txt"}, c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	info, err := Info(fs, nil, c)
	require.NoError(t, err)
	ir := info.(InfoResult)
	assert.Equal(t, int64(1), ir.Files)
	assert.Equal(t, int64(2), ir.Directories)
	assert.Equal(t, int64(2), ir.TotalDataBytes)
}

func TestEchoRejectsRoot(t *testing.T) {
	fs, c := newFS(t)
	_, err := Echo(fs, []string{"/", "x"}, c)
	assert.ErrorIs(t, err, ErrCannotWriteRoot)
}

func TestCatReturnsContent(t *testing.T) {
	fs, c := newFS(t)
	_, err := Echo(fs, []string{"/f", "hello"}, c)
	require.NoError(t, err)

	got, err := Cat(fs, []string{"/f"}, c)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestAppendReturnsNewSize(t *testing.T) {
	fs, c := newFS(t)
	_, err := Echo(fs, []string{"/f", "ab"}, c)
	require.NoError(t, err)

	got, err := Append(fs, []string{"/f", "cd"}, c)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)

	content, err := Cat(fs, []string{"/f"}, c)
	require.NoError(t, err)
	assert.Equal(t, "abcd", content)
}

func TestRmRecursiveThenAutoDelete(t *testing.T) {
	fs, c := newFS(t)
	_, err := Echo(fs, []string{"/a/b.txt", "hi"}, c)
	require.NoError(t, err)

	got, err := Rm(fs, []string{"/a", "RECURSIVE"}, c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	assert.True(t, fs.MaybeDeleteKey())

	tst, err := Test(fs, []string{"/a"}, c)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tst)
}

func TestRmWithoutRecursiveOnNonEmptyDirErrors(t *testing.T) {
	fs, c := newFS(t)
	_, err := Echo(fs, []string{"/a/b.txt", "hi"}, c)
	require.NoError(t, err)

	_, err = Rm(fs, []string{"/a"}, c)
	assert.ErrorIs(t, err, ErrDirNotEmpty)
}

func TestMkdirParentsIdempotent(t *testing.T) {
	fs, c := newFS(t)

	_, err := Mkdir(fs, []string{"/a/b", "PARENTS"}, c)
	require.NoError(t, err)

	_, err = Mkdir(fs, []string{"/a/b", "PARENTS"}, c)
	require.NoError(t, err)

	_, err = Mkdir(fs, []string{"/a/b"}, c)
	assert.ErrorIs(t, err, ErrPathExists)
}

func TestMvRecursivePreservesDescendants(t *testing.T) {
	fs, c := newFS(t)
	_, err := Mkdir(fs, []string{"/src", "PARENTS"}, c)
	require.NoError(t, err)
	_, err = Echo(fs, []string{"/src/x", "1"}, c)
	require.NoError(t, err)
	_, err = Echo(fs, []string{"/src/sub/y", "22"}, c)
	require.NoError(t, err)
	_, err = Mkdir(fs, []string{"/dst", "PARENTS"}, c)
	require.NoError(t, err)

	_, err = Mv(fs, []string{"/src", "/dst/src"}, c)
	require.NoError(t, err)

	x, err := Cat(fs, []string{"/dst/src/x"}, c)
	require.NoError(t, err)
	assert.Equal(t, "1", x)

	y, err := Cat(fs, []string{"/dst/src/sub/y"}, c)
	require.NoError(t, err)
	assert.Equal(t, "22", y)

	tst, err := Test(fs, []string{"/src"}, c)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tst)

	_, err = Mv(fs, []string{"/dst/src", "/dst/src/inside"}, c)
	assert.ErrorIs(t, err, ErrMoveIntoOwnSubtree)
}

func TestSymlinkLoopDetection(t *testing.T) {
	fs, c := newFS(t)
	_, err := Ln(fs, []string{"/b", "/a"}, c)
	require.NoError(t, err)
	_, err = Ln(fs, []string{"/a", "/b"}, c)
	require.NoError(t, err)

	_, err = Cat(fs, []string{"/a"}, c)
	assert.ErrorIs(t, err, ErrTooManySymlinks)

	target, err := Readlink(fs, []string{"/a"}, c)
	require.NoError(t, err)
	assert.Equal(t, "/b", target)
}

func TestGrepGlobAndBloom(t *testing.T) {
	fs, c := newFS(t)
	_, err := Echo(fs, []string{"/f1", "alpha beta gamma"}, c)
	require.NoError(t, err)
	_, err = Echo(fs, []string{"/f2", "nothing relevant here"}, c)
	require.NoError(t, err)
	_, err = Echo(fs, []string{"/binary", "\x00\x00ERROR\x00\x00"}, c)
	require.NoError(t, err)

	matches, err := Grep(fs, []string{"/", "*ERROR*"}, c)
	require.NoError(t, err)
	gm := matches.([]GrepMatch)
	require.Len(t, gm, 1)
	assert.Equal(t, "/binary", gm[0].Path)
	assert.Equal(t, int64(0), gm[0].Line)
	assert.Equal(t, "Binary file matches", gm[0].Text)

	matches, err = Grep(fs, []string{"/", "*beta*"}, c)
	require.NoError(t, err)
	gm = matches.([]GrepMatch)
	require.Len(t, gm, 1)
	assert.Equal(t, "/f1", gm[0].Path)
	assert.Equal(t, int64(1), gm[0].Line)

	matchesNocase, err := Grep(fs, []string{"/", "*BETA*", "NOCASE"}, c)
	require.NoError(t, err)
	assert.Equal(t, gm, matchesNocase.([]GrepMatch))
}

func TestDepthCap(t *testing.T) {
	fs, c := newFS(t)

	long := "/a"
	for i := 0; i < 257; i++ {
		long += "/a"
	}

	_, err := Echo(fs, []string{long, "x"}, c)
	assert.ErrorIs(t, err, vpath.ErrDepthExceeded)

	info, err := Info(fs, nil, c)
	require.NoError(t, err)
	// Only the root directory exists; the rejected write created nothing.
	assert.Equal(t, int64(1), info.(InfoResult).TotalInodes)
}

func TestFindWithTypeFilter(t *testing.T) {
	fs, c := newFS(t)
	_, err := Echo(fs, []string{"/dir/a.txt", "x"}, c)
	require.NoError(t, err)
	_, err = Mkdir(fs, []string{"/dir/sub"}, c)
	require.NoError(t, err)

	found, err := Find(fs, []string{"/", "*", "TYPE", "file"}, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"/dir/a.txt"}, found)
}

func TestDu(t *testing.T) {
	fs, c := newFS(t)
	_, err := Echo(fs, []string{"/dir/a.txt", "hello"}, c)
	require.NoError(t, err)
	_, err = Echo(fs, []string{"/dir/b.txt", "world!"}, c)
	require.NoError(t, err)

	res, err := Du(fs, []string{"/dir"}, c)
	require.NoError(t, err)
	du := res.(DuResult)
	assert.Equal(t, int64(2), du.Files)
	assert.Equal(t, int64(11), du.TotalBytes)
}

func TestKeysGlobMatchesFlatMap(t *testing.T) {
	fs, c := newFS(t)
	_, err := Echo(fs, []string{"/dir/a.txt", "x"}, c)
	require.NoError(t, err)
	_, err = Echo(fs, []string{"/dir/b.log", "x"}, c)
	require.NoError(t, err)

	got, err := Keys(fs, []string{"*.txt"}, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"/dir/a.txt"}, got.([]string))
}

func TestCpRecursiveAtomic(t *testing.T) {
	fs, c := newFS(t)
	_, err := Echo(fs, []string{"/src/x", "1"}, c)
	require.NoError(t, err)
	_, err = Echo(fs, []string{"/src/sub/y", "22"}, c)
	require.NoError(t, err)

	_, err = Cp(fs, []string{"/src", "/dst", "RECURSIVE", "ATOMIC"}, c)
	require.NoError(t, err)

	x, err := Cat(fs, []string{"/dst/x"}, c)
	require.NoError(t, err)
	assert.Equal(t, "1", x)

	y, err := Cat(fs, []string{"/dst/sub/y"}, c)
	require.NoError(t, err)
	assert.Equal(t, "22", y)

	orig, err := Cat(fs, []string{"/src/x"}, c)
	require.NoError(t, err)
	assert.Equal(t, "1", orig)

	staging := fs.Lookup("/.vfs-staging")
	require.NotNil(t, staging)
	assert.Empty(t, staging.Children, "atomic copy must leave no dangling staging child entries")
}
