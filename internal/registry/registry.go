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

// Package registry is the registration and dispatch glue (C9): it holds
// one filesystem object per key, guards each key with a single exclusive
// lock as spec §5/§9 requires of any multi-threaded host, and drives
// command dispatch into internal/fsops. It also owns the lifecycle
// protocol (auto-create on write, auto-delete on last-entry removal) and a
// pluggable Loader for cold keys, deduplicated with singleflight so a slow
// snapshot load is never triggered twice for the same key concurrently.
package registry

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/fsops"
	"github.com/vfsengine/vfsengine/internal/vfs"
)

// Loader fetches a previously persisted filesystem for key, e.g. from a
// snapshot store. It returns (nil, nil) when key has never been written.
type Loader func(key string) (*vfs.FS, error)

// entry pairs a filesystem object with the single exclusive lock spec §5
// requires a multi-threaded host to hold for the duration of any command
// on that key.
type entry struct {
	mu sync.Mutex
	fs *vfs.FS
}

// Registry is the host-facing store of filesystem objects, one per key.
type Registry struct {
	clock  clock.Clock
	loader Loader

	mu      sync.Mutex
	entries map[string]*entry

	group singleflight.Group
}

// New returns a Registry. loader may be nil, in which case every key
// starts cold (as if freshly created).
func New(c clock.Clock, loader Loader) *Registry {
	if loader == nil {
		loader = func(string) (*vfs.FS, error) { return nil, nil }
	}
	return &Registry{
		clock:   c,
		loader:  loader,
		entries: make(map[string]*entry),
	}
}

// getEntry returns the entry for key, loading it (deduplicated via
// singleflight across concurrent callers) if this is the first reference.
func (r *Registry) getEntry(key string) (*entry, error) {
	r.mu.Lock()
	e, ok := r.entries[key]
	r.mu.Unlock()
	if ok {
		return e, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		loaded, err := r.loader(key)
		if err != nil {
			return nil, err
		}
		ne := &entry{fs: loaded}

		r.mu.Lock()
		if existing, ok := r.entries[key]; ok {
			r.mu.Unlock()
			return existing, nil
		}
		r.entries[key] = ne
		r.mu.Unlock()

		return ne, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry), nil
}

// Execute runs one FS.* command against key's filesystem, applying the
// auto-create/auto-delete lifecycle and replication rules from spec §4.6:
// write commands on a missing key auto-create it; read commands on a
// missing key fail with ErrNoSuchKey; successful writes that can shrink
// the object trigger MaybeDeleteKey and drop the key entirely.
//
// replicate, if non-nil, is invoked with (key, cmdName, args) after every
// successful write command — the hook a real host uses to forward the
// command to followers/snapshot log.
func (r *Registry) Execute(key, cmdName string, args []string, replicate func(key, cmd string, args []string)) (any, error) {
	cmd, ok := fsops.Lookup(cmdName)
	if !ok {
		return nil, fmt.Errorf("unknown command %q", cmdName)
	}

	e, err := r.getEntry(key)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.fs == nil {
		if !cmd.Write {
			return nil, fsops.ErrNoSuchKey
		}
		e.fs = vfs.New()
	}
	e.fs.EnsureRoot(r.clock)

	result, err := cmd.Run(e.fs, args, r.clock)
	if err != nil {
		return nil, err
	}

	if cmd.Write {
		if replicate != nil {
			replicate(key, cmdName, args)
		}
		if e.fs.MaybeDeleteKey() {
			r.mu.Lock()
			delete(r.entries, key)
			r.mu.Unlock()
			e.fs = nil
		}
	}

	return result, nil
}

// Snapshot returns the live filesystem object for key, or nil if the key
// does not exist. Intended for the host's snapshot-save path, which must
// see a stable object — safe here because Execute holds the same per-key
// lock for the duration of every command.
func (r *Registry) Snapshot(key string) *vfs.FS {
	e, err := r.getEntry(key)
	if err != nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fs
}

// Restore installs fs as the live object for key, overwriting whatever was
// there (used by the host's snapshot-load path).
func (r *Registry) Restore(key string, fs *vfs.FS) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = &entry{fs: fs}
}

// Keys returns every key currently materialized in the registry.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for k, e := range r.entries {
		if e.fs != nil {
			out = append(out, k)
		}
	}
	return out
}
