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
	"strings"

	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/vbloom"
	"github.com/vfsengine/vfsengine/internal/vfs"
	"github.com/vfsengine/vfsengine/internal/vinode"
	"github.com/vfsengine/vfsengine/internal/vpath"
)

// LsEntry is one row of an Ls LONG reply.
type LsEntry struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Mode  string `json:"mode"`
	Size  int64  `json:"size"`
	Mtime int64  `json:"mtime"`
}

// Ls lists the children of path (default "/"), resolving symlinks on the
// target. LONG requests the (name, type, mode, size, mtime) quintuple form
// instead of a bare name array.
func Ls(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) > 2 {
		return nil, ErrWrongArity
	}

	path := vpath.Root
	long := false

	switch len(args) {
	case 0:
	case 1:
		if tokenEquals(args[0], "LONG") {
			long = true
		} else {
			path = args[0]
		}
	case 2:
		path = args[0]
		if !tokenEquals(args[1], "LONG") {
			return nil, SyntaxError("LONG")
		}
		long = true
	}

	norm, err := vpath.Normalize(path)
	if err != nil {
		return nil, err
	}

	resolved, err := resolveOrError(fs, norm)
	if err != nil {
		return nil, err
	}

	dir := fs.Lookup(resolved)
	if dir == nil {
		return nil, ErrNoSuchDirectory
	}
	if dir.Type != vinode.Dir {
		return nil, ErrNotADirectory
	}
	dir.AtimeMs = clock.NowMillis(c)

	if !long {
		names := append([]string(nil), dir.Children...)
		return names, nil
	}

	entries := make([]LsEntry, 0, len(dir.Children))
	for _, name := range dir.Children {
		childPath, _ := vpath.Join(resolved, name)
		child := fs.Lookup(childPath)
		if child == nil {
			continue
		}
		entries = append(entries, LsEntry{
			Name:  name,
			Type:  typeString(child.Type),
			Mode:  octalString(child.Mode),
			Size:  child.Size(),
			Mtime: child.MtimeMs,
		})
	}
	return entries, nil
}

func octalString(mode uint16) string {
	const digits = "01234567"
	if mode == 0 {
		return "0"
	}
	var buf [6]byte
	i := len(buf)
	for mode > 0 {
		i--
		buf[i] = digits[mode%8]
		mode /= 8
	}
	return string(buf[i:])
}

// TreeNode is one element of the nested Tree reply: either a scalar leaf
// name, or a [name, children] pair for a directory.
type TreeNode struct {
	Name     string
	Children []TreeNode
	IsDir    bool
}

const defaultTreeDepth = 64

// Tree returns a nested directory structure rooted at path, descending at
// most DEPTH levels (default 64).
func Tree(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 1 && len(args) != 3 {
		return nil, ErrWrongArity
	}

	depth := int64(defaultTreeDepth)
	if len(args) == 3 {
		if !tokenEquals(args[1], "DEPTH") {
			return nil, SyntaxError("DEPTH")
		}
		d, err := parseDepth(args[2])
		if err != nil {
			return nil, err
		}
		depth = d
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}

	in := fs.Lookup(path)
	if in == nil {
		return nil, ErrNoSuchPath
	}

	return buildTree(fs, path, in, depth), nil
}

func buildTree(fs *vfs.FS, path string, in *vinode.Inode, depth int64) TreeNode {
	name := treeName(path, in)

	if in.Type != vinode.Dir || depth <= 0 {
		return TreeNode{Name: name}
	}

	children := make([]TreeNode, 0, len(in.Children))
	for _, childName := range in.Children {
		childPath, _ := vpath.Join(path, childName)
		child := fs.Lookup(childPath)
		if child == nil {
			continue
		}
		children = append(children, buildTree(fs, childPath, child, depth-1))
	}

	return TreeNode{Name: name, Children: children, IsDir: true}
}

func treeName(path string, in *vinode.Inode) string {
	base := vpath.Basename(path)
	if vpath.IsRoot(path) {
		base = vpath.Root
	}
	switch in.Type {
	case vinode.Dir:
		if vpath.IsRoot(path) {
			return vpath.Root
		}
		return base + "/"
	case vinode.Symlink:
		return base + "@"
	default:
		return base
	}
}

// Find walks depth-first from path, emitting the full path of every inode
// whose basename matches pattern and (if TYPE is given) whose type matches.
func Find(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 2 && len(args) != 4 {
		return nil, ErrWrongArity
	}

	var typeFilter *vinode.Type
	if len(args) == 4 {
		if !tokenEquals(args[2], "TYPE") {
			return nil, SyntaxError("TYPE")
		}
		t, err := parseTypeArg(args[3])
		if err != nil {
			return nil, err
		}
		typeFilter = &t
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}
	pattern := args[1]

	root := fs.Lookup(path)
	if root == nil {
		return nil, ErrNoSuchPath
	}

	var out []string
	walkDFS(fs, path, root, func(p string, in *vinode.Inode) {
		if !vpath.GlobMatch(pattern, vpath.Basename(p), false) {
			return
		}
		if typeFilter != nil && *typeFilter != in.Type {
			return
		}
		out = append(out, p)
	})

	return out, nil
}

// walkDFS depth-first visits path and every descendant, invoking visit on
// each (including path itself).
func walkDFS(fs *vfs.FS, path string, in *vinode.Inode, visit func(string, *vinode.Inode)) {
	visit(path, in)
	if in.Type != vinode.Dir {
		return
	}
	for _, name := range in.Children {
		childPath, _ := vpath.Join(path, name)
		child := fs.Lookup(childPath)
		if child == nil {
			continue
		}
		walkDFS(fs, childPath, child, visit)
	}
}

// GrepMatch is one [path, lineno, line] triple in a Grep reply.
type GrepMatch struct {
	Path string
	Line int64
	Text string
}

// Grep walks depth-first from path, searching file contents for pattern.
func Grep(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, ErrWrongArity
	}

	nocase := false
	if len(args) == 3 {
		if !tokenEquals(args[2], "NOCASE") {
			return nil, SyntaxError("NOCASE")
		}
		nocase = true
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}
	pattern := args[1]

	root := fs.Lookup(path)
	if root == nil {
		return nil, ErrNoSuchPath
	}

	literal := vpath.LongestLiteral(pattern)

	var out []GrepMatch
	walkDFS(fs, path, root, func(p string, in *vinode.Inode) {
		if in.Type != vinode.File {
			return
		}
		if !mayContain(in.Bloom, literal) {
			return
		}
		out = append(out, grepFile(p, in.Content, pattern, nocase)...)
	})

	return out, nil
}

func mayContain(f vbloom.Filter, literal string) bool {
	return f.MayContain(literal)
}

func grepFile(path string, content []byte, pattern string, nocase bool) []GrepMatch {
	if containsNUL(content) {
		if containsLiteralFold(content, vpath.LongestLiteral(pattern)) {
			return []GrepMatch{{Path: path, Line: 0, Text: "Binary file matches"}}
		}
		return nil
	}

	var out []GrepMatch
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if vpath.GlobMatch(pattern, line, nocase) {
			out = append(out, GrepMatch{Path: path, Line: int64(i + 1), Text: line})
		}
	}
	return out
}

func containsNUL(content []byte) bool {
	for _, b := range content {
		if b == 0 {
			return true
		}
	}
	return false
}

func containsLiteralFold(content []byte, literal string) bool {
	if literal == "" {
		return true
	}
	lowerContent := make([]byte, len(content))
	for i, b := range content {
		lowerContent[i] = asciiLower(b)
	}
	lowerLit := make([]byte, len(literal))
	for i := 0; i < len(literal); i++ {
		lowerLit[i] = asciiLower(literal[i])
	}
	return strings.Contains(string(lowerContent), string(lowerLit))
}

func asciiLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// DuResult is the reply shape of the supplemented Du command.
type DuResult struct {
	Files      int64 `json:"files"`
	Dirs       int64 `json:"dirs"`
	Symlinks   int64 `json:"symlinks"`
	TotalBytes int64 `json:"total_bytes"`
}

// Du recursively accounts for the subtree rooted at path, reusing the same
// depth-first walk as Find/Grep.
func Du(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 1 {
		return nil, ErrWrongArity
	}

	path, err := vpath.Normalize(args[0])
	if err != nil {
		return nil, err
	}

	root := fs.Lookup(path)
	if root == nil {
		return nil, ErrNoSuchPath
	}

	var result DuResult
	walkDFS(fs, path, root, func(p string, in *vinode.Inode) {
		switch in.Type {
		case vinode.File:
			result.Files++
			result.TotalBytes += int64(len(in.Content))
		case vinode.Dir:
			result.Dirs++
		case vinode.Symlink:
			result.Symlinks++
		}
	})

	return result, nil
}

// Keys glob-matches pattern directly against every path in M, unlike Find
// which walks from a given directory. O(n) over the map.
func Keys(fs *vfs.FS, args []string, c clock.Clock) (any, error) {
	if len(args) != 1 {
		return nil, ErrWrongArity
	}

	pattern := args[0]
	var out []string
	for p := range fs.M {
		if vpath.GlobMatch(pattern, p, false) {
			out = append(out, p)
		}
	}
	return out, nil
}
