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
	"encoding/base32"
	"errors"
	"os"
	"path/filepath"

	"github.com/vfsengine/vfsengine/internal/logger"
	"github.com/vfsengine/vfsengine/internal/vfs"
	"github.com/vfsengine/vfsengine/internal/vsnapshot"
)

// diskStore persists one snapshot file per key under dir. A key's filename
// is base32-encoded so arbitrary key bytes never collide with path
// separators. Empty dir disables persistence entirely: load always misses
// and save is a no-op, leaving every key in-memory only for the life of the
// process.
type diskStore struct {
	dir string
}

func newDiskStore(dir string) *diskStore {
	return &diskStore{dir: dir}
}

func (s *diskStore) path(key string) string {
	name := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(key))
	return filepath.Join(s.dir, name+".vfssnap")
}

// load implements registry.Loader.
func (s *diskStore) load(key string) (*vfs.FS, error) {
	if s.dir == "" {
		return nil, nil
	}

	f, err := os.Open(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return vsnapshot.Load(f)
}

// save persists fs for key, used as the host's replicate hook. fs may be
// nil when the key was just auto-deleted, in which case the snapshot file is
// removed.
func (s *diskStore) save(key string, fs *vfs.FS) {
	if s.dir == "" {
		return
	}
	if fs == nil {
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf("snapshot remove %s: %v", key, err)
		}
		return
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		logger.Warnf("snapshot mkdir %s: %v", key, err)
		return
	}

	tmp := s.path(key) + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		logger.Warnf("snapshot create %s: %v", key, err)
		return
	}

	if err := vsnapshot.Save(f, fs); err != nil {
		f.Close()
		os.Remove(tmp)
		logger.Warnf("snapshot save %s: %v", key, err)
		return
	}
	if err := f.Close(); err != nil {
		logger.Warnf("snapshot close %s: %v", key, err)
		return
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		logger.Warnf("snapshot rename %s: %v", key, err)
	}
}
