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

package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/fsops"
)

// RegistryLifecycleTest exercises the auto-create/auto-delete/snapshot
// lifecycle against a Registry rebuilt fresh before every test.
type RegistryLifecycleTest struct {
	suite.Suite

	clock *clock.SimulatedClock
	r     *Registry
}

func TestRegistryLifecycleSuite(t *testing.T) {
	suite.Run(t, new(RegistryLifecycleTest))
}

func (s *RegistryLifecycleTest) SetupTest() {
	s.clock = clock.NewSimulatedClock(time.Unix(0, 0))
	s.r = New(s.clock, nil)
}

func (s *RegistryLifecycleTest) TestSnapshotOfUnknownKeyIsNil() {
	s.Nil(s.r.Snapshot("missing"))
}

func (s *RegistryLifecycleTest) TestWriteThenSnapshotSeesContent() {
	_, err := s.r.Execute("k", "ECHO", []string{"/a.txt", "hi"}, nil)
	s.Require().NoError(err)

	snap := s.r.Snapshot("k")
	s.Require().NotNil(snap)
	s.Equal(int64(1), snap.Files)
}

func (s *RegistryLifecycleTest) TestRestoreOverwritesEntry() {
	_, err := s.r.Execute("k", "ECHO", []string{"/a.txt", "hi"}, nil)
	s.Require().NoError(err)

	replacement := s.r.Snapshot("k")
	_, err = fsops.Echo(replacement, []string{"/b.txt", "bye"}, s.clock)
	s.Require().NoError(err)
	s.r.Restore("k", replacement)

	snap := s.r.Snapshot("k")
	s.Require().NotNil(snap)
	s.Equal(int64(2), snap.Files)
}

func (s *RegistryLifecycleTest) TestKeysOnlyListsMaterializedEntries() {
	_, err := s.r.Execute("k1", "ECHO", []string{"/a.txt", "hi"}, nil)
	s.Require().NoError(err)
	_, err = s.r.Execute("k1", "RM", []string{"/a.txt"}, nil)
	s.Require().NoError(err)

	_, err = s.r.Execute("k2", "ECHO", []string{"/a.txt", "hi"}, nil)
	s.Require().NoError(err)

	s.ElementsMatch([]string{"k2"}, s.r.Keys())
}

func (s *RegistryLifecycleTest) TearDownTest() {
	s.r = nil
}
