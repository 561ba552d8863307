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

// Package errorpage turns errors into the data shown on an error page,
// degrading to the raw stack trace whenever the source snippets cannot
// be resolved.
package errorpage

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/elastic/elastic-agent-libs/logp"

	"github.com/elastic/apm-stackpage/internal/logs"
	"github.com/elastic/apm-stackpage/internal/model"
	"github.com/elastic/apm-stackpage/internal/render"
	"github.com/elastic/apm-stackpage/internal/server/request"
	"github.com/elastic/apm-stackpage/internal/snippet"
	"github.com/elastic/apm-stackpage/internal/stacktrace"
)

// Handler resolves errors into page results.
type Handler struct {
	// Coordinator attaches source snippets to the parsed frames.
	Coordinator snippet.Coordinator

	// Parse extracts stack frames from an error. Defaults to stacktrace.Parse.
	Parse func(error) ([]model.StackFrame, error)

	Logger *logp.Logger
}

// New returns a Handler resolving frames with coordinator.
func New(coordinator snippet.Coordinator) *Handler {
	return &Handler{
		Coordinator: coordinator,
		Parse:       stacktrace.Parse,
		Logger:      logp.NewLogger(logs.Stacktrace),
	}
}

// Resolve returns the page result for err. Failures to parse the stack
// trace or to read any source file are never returned; the result falls
// back to the raw stack trace instead.
func (h *Handler) Resolve(ctx context.Context, err error) model.Result {
	result := model.Result{
		Message:    err.Error(),
		Stacktrace: stacktrace.Raw(err),
	}
	parse := h.Parse
	if parse == nil {
		parse = stacktrace.Parse
	}
	frames, parseErr := parse(err)
	if parseErr != nil {
		h.Logger.Debugw("rendering raw stack trace", "error", parseErr)
		result.Err = parseErr
		return result
	}
	return h.resolveFrames(ctx, result, frames)
}

// ResolvePanic returns the page result for a recovered panic value and the
// goroutine stack captured while recovering it.
func (h *Handler) ResolvePanic(ctx context.Context, value interface{}, stack []byte) model.Result {
	if err, ok := value.(error); ok {
		if frames, parseErr := stacktrace.Parse(err); parseErr == nil {
			return h.resolveFrames(ctx, model.Result{
				Message:    err.Error(),
				Stacktrace: stacktrace.Raw(err),
			}, frames)
		}
	}
	result := model.Result{
		Message:    fmt.Sprint(value),
		Stacktrace: fmt.Sprintf("panic: %v\n\n%s", value, stack),
	}
	frames, parseErr := stacktrace.ParseText(string(stack))
	if parseErr != nil {
		h.Logger.Debugw("rendering raw panic stack", "error", parseErr)
		result.Err = parseErr
		return result
	}
	return h.resolveFrames(ctx, result, frames)
}

func (h *Handler) resolveFrames(ctx context.Context, result model.Result, frames []model.StackFrame) model.Result {
	resolved, err := h.Coordinator.ResolveAll(ctx, frames)
	if err != nil {
		err = errors.Wrap(err, "resolving source snippets")
		h.Logger.Errorw("failed to render error page, falling back to raw stack trace", "error", err)
		result.Err = err
		return result
	}
	result.Frames = resolved
	return result
}

// Write resolves err and writes the page to c. The response status is
// 200 whether the frames could be resolved or not.
func (h *Handler) Write(c *request.Context, err error) {
	contentType, body := h.render(h.Resolve(c.Request.Context(), err))
	id := request.IDResponseValidErrorPage
	if contentType == render.ContentTypeText {
		id = request.IDResponseValidRawStacktrace
	}
	c.Result.SetDefault(id)
	c.WriteBody(contentType, body)
}

// PanicPage renders the page for a recovered panic.
func (h *Handler) PanicPage(ctx context.Context, value interface{}, stack []byte) (string, []byte) {
	return h.render(h.ResolvePanic(ctx, value, stack))
}

func (h *Handler) render(result model.Result) (string, []byte) {
	contentType, body, err := render.Page(result)
	if err != nil {
		h.Logger.Errorw("failed to render error page, falling back to raw stack trace", "error", err)
		return render.ContentTypeText, render.Fallback(result.Stacktrace)
	}
	return contentType, body
}
