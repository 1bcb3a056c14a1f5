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

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowMillis(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sc := NewSimulatedClock(start)

	assert.Equal(t, start.UnixMilli(), NowMillis(sc))

	sc.AdvanceTime(1500 * time.Millisecond)
	assert.Equal(t, start.UnixMilli()+1500, NowMillis(sc))
}

func TestSimulatedClockSetTime(t *testing.T) {
	sc := NewSimulatedClock(time.Unix(0, 0))
	target := time.Unix(1000, 0)

	sc.SetTime(target)

	assert.Equal(t, target, sc.Now())
}

func TestRealClockAdvances(t *testing.T) {
	var c Clock = RealClock{}
	first := c.Now()
	<-c.After(time.Millisecond)
	assert.True(t, c.Now().After(first) || c.Now().Equal(first))
}
