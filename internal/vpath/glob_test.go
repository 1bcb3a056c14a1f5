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

package vpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobMatchBasics(t *testing.T) {
	cases := []struct {
		pattern, s string
		nocase     bool
		want       bool
	}{
		{"*", "anything", false, true},
		{"*", "", false, true},
		{"*.txt", "notes.txt", false, true},
		{"*.txt", "notes.txtx", false, false},
		{"foo?bar", "fooXbar", false, true},
		{"foo?bar", "foobar", false, false},
		{"[abc]x", "ax", false, true},
		{"[abc]x", "dx", false, false},
		{"[a-z]x", "mx", false, true},
		{"[z-a]x", "mx", false, true}, // reversed range treated as forward
		{"[!abc]x", "dx", false, true},
		{"[^abc]x", "ax", false, false},
		{`\*`, "*", false, true},
		{`\*`, "a", false, false},
		{"*BETA*", "alpha beta gamma", true, true},
		{"*BETA*", "alpha beta gamma", false, false},
	}

	for _, c := range cases {
		got := GlobMatch(c.pattern, c.s, c.nocase)
		assert.Equal(t, c.want, got, "GlobMatch(%q, %q, %v)", c.pattern, c.s, c.nocase)
	}
}

func TestGlobMatchStarCoversEverything(t *testing.T) {
	for _, s := range []string{"", "a", "abc", "a/b/c", "\x00binary"} {
		assert.True(t, GlobMatch("*", s, false))
	}
}

func TestGlobMatchCaseInsensitiveSymmetry(t *testing.T) {
	patterns := []string{"*Beta*", "f[A-Z]o", "Hello?World"}
	strs := []string{"ALPHA BETA", "FoO", "HelloXWorld"}

	for _, p := range patterns {
		for _, s := range strs {
			want := GlobMatch(lower(p), lower(s), false)
			got := GlobMatch(p, s, true)
			assert.Equal(t, want, got, "pattern=%q s=%q", p, s)
		}
	}
}

func lower(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, lowerRune(r))
	}
	return string(out)
}

func TestLongestLiteral(t *testing.T) {
	cases := []struct {
		pattern string
		want    string
	}{
		{"*ERROR*", "ERROR"},
		{"*beta*", "beta"},
		{"abc", "abc"},
		{"a*bcdef*g", "bcdef"},
		{`a\*bcdef`, "a*bcdef"},
		{"[abc]longrun*", "longrun"},
		{"**", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, LongestLiteral(c.pattern), "pattern=%q", c.pattern)
	}
}
