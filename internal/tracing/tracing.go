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

// Package tracing wires one OpenTelemetry span per dispatched command, plus
// a StartWalk helper for child spans around subtree walks, following the
// teacher's common/otel_metrics.go use of go.opentelemetry.io/otel. The
// fsops handlers take no context and open no child spans.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies this package's spans in exported trace data.
const tracerName = "github.com/vfsengine/vfsengine/internal/tracing"

var tracer = otel.Tracer(tracerName)

// StartCommand opens a span for one dispatched FS.* command.
func StartCommand(ctx context.Context, key, command string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "fsops."+command,
		trace.WithAttributes(
			attribute.String("vfs.key", key),
			attribute.String("vfs.command", command),
		),
	)
}

// StartWalk opens a child span named "fsops.walk.<op>" for a subtree walk
// at path. No package in this module calls it.
func StartWalk(ctx context.Context, op, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "fsops.walk."+op,
		trace.WithAttributes(attribute.String("vfs.path", path)),
	)
}

// RecordError marks span as failed and attaches err, if non-nil.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
