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

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vfsengine/vfsengine/cfg"
	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/fsops"
	"github.com/vfsengine/vfsengine/internal/registry"
)

// newImportCmd walks a local directory tree into a filesystem key, one
// ECHO/MKDIR/LN command at a time, using the same registry path a live
// server would. This is the bulk-load tool a host operator reaches for
// instead of scripting individual FS.* commands over the wire.
func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <key> <local-dir>",
		Short: "load a local directory tree into a filesystem key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, localDir := args[0], args[1]
			c := cfg.FromViper(v)
			store := newDiskStore(c.SnapshotDir)
			reg := registry.New(clock.RealClock{}, store.load)

			if err := importTree(reg, key, localDir); err != nil {
				return err
			}
			store.save(key, reg.Snapshot(key))
			return nil
		},
	}
}

func importTree(reg *registry.Registry, key, localDir string) error {
	return filepath.Walk(localDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		dst := "/" + filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err != nil {
				return err
			}
			_, err = reg.Execute(key, "LN", []string{target, dst}, nil)
			return err
		case info.IsDir():
			_, err := reg.Execute(key, "MKDIR", []string{dst, "PARENTS"}, nil)
			return err
		default:
			content, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			_, err = reg.Execute(key, "ECHO", []string{dst, string(content)}, nil)
			return err
		}
	})
}

// newExportCmd walks the subtree rooted at path within a filesystem key and
// writes it under localDir, the inverse of import.
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <key> <path> <local-dir>",
		Short: "write a filesystem key's subtree out to a local directory",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, path, localDir := args[0], args[1], args[2]
			c := cfg.FromViper(v)
			store := newDiskStore(c.SnapshotDir)
			reg := registry.New(clock.RealClock{}, store.load)

			return exportTree(reg, key, path, localDir)
		},
	}
}

// exportTree lists every path under path with FIND (pattern "*" matches
// everything, including the dotfiles a glob would otherwise skip, since
// vpath.GlobMatch applies no implicit dotfile exclusion) and recreates each
// one under localDir according to its STAT'd type.
func exportTree(reg *registry.Registry, key, path, localDir string) error {
	found, err := reg.Execute(key, "FIND", []string{path, "*"}, nil)
	if err != nil {
		return err
	}
	paths, _ := found.([]string)

	if err := os.MkdirAll(localDir, 0755); err != nil {
		return err
	}

	for _, p := range append([]string{path}, paths...) {
		rel, err := filepathRel(path, p)
		if err != nil {
			return err
		}
		dst := filepath.Join(localDir, rel)

		meta, err := reg.Execute(key, "STAT", []string{p}, nil)
		if err != nil {
			return err
		}
		info, ok := meta.(*fsops.InodeMeta)
		if !ok || info == nil {
			continue
		}

		switch info.Type {
		case "dir":
			if err := os.MkdirAll(dst, 0755); err != nil {
				return err
			}
		case "symlink":
			target, err := reg.Execute(key, "READLINK", []string{p}, nil)
			if err != nil {
				return err
			}
			t, _ := target.(string)
			os.Remove(dst)
			if err := os.Symlink(t, dst); err != nil {
				return err
			}
		default:
			content, err := reg.Execute(key, "CAT", []string{p}, nil)
			if err != nil {
				return err
			}
			text, _ := content.(string)
			if err := os.WriteFile(dst, []byte(text), 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

func filepathRel(base, target string) (string, error) {
	if target == base {
		return ".", nil
	}
	rel := target[len(base):]
	rel = trimLeadingSlash(rel)
	return rel, nil
}

func trimLeadingSlash(s string) string {
	for len(s) > 0 && s[0] == '/' {
		s = s[1:]
	}
	return s
}
