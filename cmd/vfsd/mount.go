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
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/spf13/cobra"

	"github.com/vfsengine/vfsengine/cfg"
	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/fusebridge"
	"github.com/vfsengine/vfsengine/internal/logger"
	"github.com/vfsengine/vfsengine/internal/registry"
)

// newMountCmd mounts one filesystem key at a real kernel mount point,
// following the teacher's cmd/mount.go shape: build a server, then
// fuse.Mount it, then block until SIGINT or SIGTERM arrives and unmount.
func newMountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount <key> <mount-point>",
		Short: "mount a filesystem key via FUSE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, mountPoint := args[0], args[1]
			c := cfg.FromViper(v)

			logger.SetFormat(c.LogFormat)
			logger.SetLevel(logger.ParseLevel(c.LogSeverity))

			store := newDiskStore(c.SnapshotDir)
			reg := registry.New(clock.RealClock{}, store.load)

			bridge := fusebridge.New(reg, fusebridge.Options{
				Key:          key,
				AttrCacheTTL: time.Duration(c.BridgeAttrCacheTTLSeconds) * time.Second,
				DirCacheTTL:  time.Duration(c.BridgeDirCacheTTLSeconds) * time.Second,
			})

			server := fuseutil.NewFileSystemServer(bridge)

			logger.Infof("mounting key %q at %s", key, mountPoint)
			mfs, err := fuse.Mount(mountPoint, server, &fuse.MountConfig{
				FSName:      "vfsengine",
				VolumeName:  "vfsengine",
				ErrorLogger: log.New(os.Stderr, "fuse: ", log.LstdFlags),
			})
			if err != nil {
				return fmt.Errorf("mount: %w", err)
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig

			logger.Infof("unmounting %s", mountPoint)
			if err := fuse.Unmount(mountPoint); err != nil {
				return fmt.Errorf("unmount: %w", err)
			}
			return mfs.Join(cmd.Context())
		},
	}
}
