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

package clock

import "time"

// Clock is a source of time, abstracted so tests can use SimulatedClock or
// FakeClock instead of the wall clock.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time

	// NowMillis returns the clock's current time as milliseconds since the
	// Unix epoch, the resolution inode timestamps are stored at.
	NowMillis() int64
}

var _ Clock = RealClock{}
var _ Clock = &FakeClock{}
var _ Clock = &SimulatedClock{}

// NowMillis returns c.NowMillis(). Kept as a free function alongside the
// Clock method so existing clock.NowMillis(c) call sites need not all take
// a receiver-call rewrite.
func NowMillis(c Clock) int64 {
	return c.NowMillis()
}
