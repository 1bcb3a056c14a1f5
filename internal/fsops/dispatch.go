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

package fsops

import (
	"strings"

	"github.com/vfsengine/vfsengine/clock"
	"github.com/vfsengine/vfsengine/internal/vfs"
)

// Handler executes a single FS.* command against an already-resolved
// filesystem object. args excludes the leading key token.
type Handler func(fs *vfs.FS, args []string, c clock.Clock) (any, error)

// Command is one entry of the registration table (spec §4.9): a handler
// plus the read/write and cost declarations the host needs at registration
// time.
type Command struct {
	Name  string
	Write bool
	Fast  bool // declared O(1) at registration, per spec §6
	Run   Handler
}

// Table is every FS.* command this repository implements, keyed by
// upper-case name. internal/registry drives dispatch from this table: C9 →
// C6 → {C5, C4, C2, C1, C3}, per spec §2.
var Table = map[string]Command{
	"INFO":     {Name: "INFO", Write: false, Fast: true, Run: Info},
	"STAT":     {Name: "STAT", Write: false, Fast: true, Run: Stat},
	"TEST":     {Name: "TEST", Write: false, Fast: true, Run: Test},
	"CAT":      {Name: "CAT", Write: false, Run: Cat},
	"READLINK": {Name: "READLINK", Write: false, Fast: true, Run: Readlink},
	"ECHO":     {Name: "ECHO", Write: true, Run: Echo},
	"APPEND":   {Name: "APPEND", Write: true, Run: Append},
	"TOUCH":    {Name: "TOUCH", Write: true, Run: Touch},
	"MKDIR":    {Name: "MKDIR", Write: true, Run: Mkdir},
	"RM":       {Name: "RM", Write: true, Run: Rm},
	"CHMOD":    {Name: "CHMOD", Write: true, Run: Chmod},
	"CHOWN":    {Name: "CHOWN", Write: true, Run: Chown},
	"LN":       {Name: "LN", Write: true, Run: Ln},
	"CP":       {Name: "CP", Write: true, Run: Cp},
	"MV":       {Name: "MV", Write: true, Run: Mv},
	"TRUNCATE": {Name: "TRUNCATE", Write: true, Run: Truncate},
	"UTIMENS":  {Name: "UTIMENS", Write: true, Run: Utimens},
	"LS":       {Name: "LS", Write: false, Run: Ls},
	"TREE":     {Name: "TREE", Write: false, Run: Tree},
	"FIND":     {Name: "FIND", Write: false, Run: Find},
	"GREP":     {Name: "GREP", Write: false, Run: Grep},
	"DU":       {Name: "DU", Write: false, Run: Du},
	"KEYS":     {Name: "KEYS", Write: false, Run: Keys},
}

// Lookup returns the command registered under name (case-insensitive) and
// whether it exists.
func Lookup(name string) (Command, bool) {
	cmd, ok := Table[strings.ToUpper(name)]
	return cmd, ok
}
