// Licensed to Elasticsearch B.V. under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. Elasticsearch B.V. licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package snippet attaches source code snippets to stack frames.
package snippet

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/elastic/apm-stackpage/internal/model"
)

// Resolver attaches a snippet of the surrounding source code to a frame.
type Resolver struct {
	Reader Reader
	Filter PathFilter
}

// Resolve returns frame with Content set to the decorated snippet around its line.
//
// Frames that do not point to project-local files are skipped: ok is false and
// err is nil. A failure to read the file is returned as an error.
func (r Resolver) Resolve(ctx context.Context, frame model.StackFrame) (model.StackFrame, bool, error) {
	if !r.Filter.Local(frame) {
		return frame, false, nil
	}
	data, err := r.Reader.ReadFile(ctx, frame.Filename)
	if err != nil {
		return frame, false, errors.Wrapf(err, "reading source of %s", frame.Location())
	}
	frame.Content = Snippet(string(data), frame.Lineno)
	return frame, true, nil
}

// Coordinator resolves all frames of a stack trace concurrently.
type Coordinator struct {
	Resolver Resolver

	// Limit bounds the number of concurrent reads. Values <= 0 start
	// one goroutine per frame.
	Limit int
}

// ResolveAll resolves frames concurrently and returns the resolved frames
// in their original order, leaving out skipped frames.
//
// If any frame fails to resolve, the first error is returned and all results
// are discarded. Reads already in flight are not cancelled; ResolveAll returns
// once all of them have completed.
func (c Coordinator) ResolveAll(ctx context.Context, frames []model.StackFrame) ([]model.StackFrame, error) {
	type resolved struct {
		frame model.StackFrame
		ok    bool
	}
	results := make([]resolved, len(frames))

	var g errgroup.Group
	if c.Limit > 0 {
		g.SetLimit(c.Limit)
	}
	for i, frame := range frames {
		g.Go(func() error {
			frame, ok, err := c.Resolver.Resolve(ctx, frame)
			if err != nil {
				return err
			}
			results[i] = resolved{frame: frame, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.StackFrame, 0, len(frames))
	for _, r := range results {
		if r.ok {
			out = append(out, r.frame)
		}
	}
	return out, nil
}
