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

// Command vfsd runs the FS.* command listener: a registry of in-memory
// filesystem objects, one per key, dispatched over a line-oriented TCP
// protocol (internal/server), with optional on-disk snapshot persistence.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vfsengine/vfsengine/cfg"
	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/logger"
	"github.com/vfsengine/vfsengine/internal/registry"
	"github.com/vfsengine/vfsengine/internal/server"
)

var v = viper.New()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "vfsd",
		Short:        "FS.* command listener backed by an in-memory key-value virtual filesystem",
		SilenceUsage: true,
		RunE:         runServe,
	}

	if err := cfg.BindFlags(cmd.PersistentFlags(), v); err != nil {
		panic(err)
	}

	cmd.AddCommand(newImportCmd(), newExportCmd(), newMountCmd())

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	c := cfg.FromViper(v)

	logger.SetFormat(c.LogFormat)
	logger.SetLevel(logger.ParseLevel(c.LogSeverity))

	store := newDiskStore(c.SnapshotDir)
	reg := registry.New(clock.RealClock{}, store.load)

	onWrite := func(key, cmdName string, cmdArgs []string) {
		go func() {
			store.save(key, reg.Snapshot(key))
		}()
	}

	srv, err := server.NewWithReplication(c.ListenAddr, reg, onWrite)
	if err != nil {
		return err
	}
	logger.Infof("listening on %s", srv.Addr().String())

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return srv.Serve(ctx)
}
