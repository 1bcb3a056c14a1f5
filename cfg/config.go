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

// Package cfg holds vfsd's runtime configuration and the flag/viper
// binding that populates it, mirroring the teacher's cfg/config.go +
// cmd/root.go split between "what the flags are" and "how they're parsed".
package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is every flag vfsd accepts.
type Config struct {
	// ListenAddr is the address the line-oriented command listener binds
	// to (internal/server).
	ListenAddr string

	// DefaultFileMode/DefaultDirMode are parsed from flags but not read when
	// inodes are created; new inodes take vinode's built-in default modes.
	DefaultFileMode uint32
	DefaultDirMode  uint32

	// LogFormat is "text" or "json"; LogSeverity is one of
	// TRACE/DEBUG/INFO/WARNING/ERROR/OFF.
	LogFormat   string
	LogSeverity string

	// BridgeAttrCacheTTLSeconds sets the kernel attribute/entry expiration
	// that internal/fusebridge reports. BridgeDirCacheTTLSeconds is passed to
	// the bridge as Options.DirCacheTTL, which the bridge does not read; the
	// bridge keeps no cache of its own.
	BridgeAttrCacheTTLSeconds int
	BridgeDirCacheTTLSeconds  int

	// SnapshotDir is where the host persists per-key snapshots on disk,
	// consumed by cmd/vfsd's disk store for its load and save hooks.
	SnapshotDir string
}

// BindFlags registers every flag on fs and binds it into v, following the
// teacher's pattern of one BindFlags call wiring both pflag registration
// and viper binding in a single place.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	fs.String("listen-addr", "127.0.0.1:6400", "address for the FS.* command listener")
	fs.Uint32("default-file-mode", 0644, "default permission bits for new files")
	fs.Uint32("default-dir-mode", 0755, "default permission bits for new directories")
	fs.String("log-format", "text", "log output format: text or json")
	fs.String("log-severity", "INFO", "minimum log severity: TRACE, DEBUG, INFO, WARNING, ERROR, OFF")
	fs.Int("bridge-attr-cache-ttl-seconds", 5, "FUSE bridge attribute cache TTL")
	fs.Int("bridge-dir-cache-ttl-seconds", 5, "FUSE bridge directory cache TTL")
	fs.String("snapshot-dir", "", "directory to persist per-key snapshots (empty disables persistence)")

	return v.BindPFlags(fs)
}

// FromViper builds a Config from a populated viper instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		ListenAddr:                v.GetString("listen-addr"),
		DefaultFileMode:           v.GetUint32("default-file-mode"),
		DefaultDirMode:            v.GetUint32("default-dir-mode"),
		LogFormat:                 v.GetString("log-format"),
		LogSeverity:               v.GetString("log-severity"),
		BridgeAttrCacheTTLSeconds: v.GetInt("bridge-attr-cache-ttl-seconds"),
		BridgeDirCacheTTLSeconds:  v.GetInt("bridge-dir-cache-ttl-seconds"),
		SnapshotDir:               v.GetString("snapshot-dir"),
	}
}
