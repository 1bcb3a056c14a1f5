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

package vbloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildEmptyForShortContent(t *testing.T) {
	f := Build([]byte("ab"))
	assert.Equal(t, Filter{}, f)
}

func TestMayContainSoundness(t *testing.T) {
	f := Build([]byte("alpha beta gamma"))

	assert.True(t, f.MayContain("beta"))
	assert.True(t, f.MayContain("alpha"))
	assert.False(t, f.MayContain("zzz_not_present"))
}

func TestMayContainCaseInsensitiveByConstruction(t *testing.T) {
	f := Build([]byte("Alpha Beta Gamma"))

	assert.True(t, f.MayContain("beta"))
	assert.True(t, f.MayContain("BETA"))
}

func TestMayContainShortLiteralAlwaysMaybe(t *testing.T) {
	f := Build([]byte("xyz"))
	assert.True(t, f.MayContain(""))
	assert.True(t, f.MayContain("ab"))
}

func TestMayContainNoFalseNegatives(t *testing.T) {
	contents := []string{
		"the quick brown fox jumps over the lazy dog",
		"",
		"a",
		"ab",
		"abc",
		"ERROR: something went wrong",
	}

	literals := []string{"quick", "fox", "ERROR", "zz", "dog", "jump"}

	for _, c := range contents {
		f := Build([]byte(c))
		for _, lit := range literals {
			if containsFold(c, lit) {
				assert.True(t, f.MayContain(lit), "content=%q literal=%q", c, lit)
			}
		}
	}
}

func containsFold(s, substr string) bool {
	ls, lsub := []byte(s), []byte(substr)
	for i := range ls {
		ls[i] = toLowerASCII(ls[i])
	}
	for i := range lsub {
		lsub[i] = toLowerASCII(lsub[i])
	}
	return indexOf(string(ls), string(lsub)) >= 0
}

func indexOf(s, substr string) int {
	if len(substr) == 0 {
		return 0
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
