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

// Package server implements the line-oriented command listener that
// stands in for "the host" (spec §6): it accepts "key cmd arg..." request
// lines over a TCP connection and replies with RESP-ish typed lines,
// driving internal/registry end-to-end without a real key-value host
// process.
package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vfsengine/vfsengine/internal/logger"
	"github.com/vfsengine/vfsengine/internal/metrics"
	"github.com/vfsengine/vfsengine/internal/registry"
	"github.com/vfsengine/vfsengine/internal/tracing"
)

// Server accepts connections and dispatches command lines into a Registry.
type Server struct {
	reg      *registry.Registry
	listener net.Listener
	onWrite  func(key, cmd string, args []string)
}

// New constructs a Server bound to addr, backed by reg.
func New(addr string, reg *registry.Registry) (*Server, error) {
	return NewWithReplication(addr, reg, nil)
}

// NewWithReplication is like New but invokes onWrite after every successful
// write command, in addition to this package's own request logging. A host
// that persists snapshots passes a hook here instead of wrapping Serve.
func NewWithReplication(addr string, reg *registry.Registry, onWrite func(key, cmd string, args []string)) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{reg: reg, listener: ln, onWrite: onWrite}, nil
}

// Addr returns the address the listener is bound to.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until the listener is closed or ctx is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.handleConn(ctx, conn)
	}
}

// Close shuts down the listener.
func (s *Server) Close() error {
	return s.listener.Close()
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		reply := s.dispatchLine(ctx, line)
		fmt.Fprintln(conn, reply)
	}
}

// dispatchLine parses and executes one "key cmd arg..." request line,
// attaching a request-correlation UUID to its log lines.
func (s *Server) dispatchLine(ctx context.Context, line string) string {
	fields := splitFields(line)
	if len(fields) < 2 {
		return "ERR syntax error — expected <key> <command>"
	}

	key, cmd, args := fields[0], strings.ToUpper(fields[1]), fields[2:]
	reqID := uuid.NewString()

	ctx, span := tracing.StartCommand(ctx, key, cmd)
	defer span.End()

	start := time.Now()
	var err error
	defer metrics.Observe(cmd, start)(&err)

	logger.Tracef("request %s: key=%s cmd=%s args=%v", reqID, key, cmd, args)

	var result any
	result, err = s.reg.Execute(key, cmd, args, s.replicate)
	metrics.KeysResident.Set(float64(len(s.reg.Keys())))
	if err != nil {
		tracing.RecordError(span, err)
		logger.Debugf("request %s failed: %v", reqID, err)
		return "ERR " + err.Error()
	}

	return formatReply(result)
}

// replicate is the hook passed to registry.Execute; a real host would
// forward (key, cmd, args) to followers or a snapshot log. This stand-in
// logs the write and then calls the onWrite hook, if one was given.
func (s *Server) replicate(key, cmd string, args []string) {
	logger.Tracef("replicate key=%s cmd=%s args=%v", key, cmd, args)
	if s.onWrite != nil {
		s.onWrite(key, cmd, args)
	}
}

// splitFields splits a request line on space characters, honoring double-quoted
// arguments so content with spaces can be passed as a single token.
func splitFields(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	hasCur := false

	flush := func() {
		if hasCur {
			fields = append(fields, cur.String())
			cur.Reset()
			hasCur = false
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			hasCur = true
		case c == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteByte(c)
			hasCur = true
		}
	}
	flush()

	return fields
}

func formatReply(result any) string {
	switch v := result.(type) {
	case nil:
		return "NULL"
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
