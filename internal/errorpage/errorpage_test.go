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

package errorpage

import (
	"context"
	stderrors "errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/elastic/elastic-agent-libs/logp"

	"github.com/elastic/apm-stackpage/internal/logs"
	"github.com/elastic/apm-stackpage/internal/model"
	"github.com/elastic/apm-stackpage/internal/render"
	"github.com/elastic/apm-stackpage/internal/server/request"
	"github.com/elastic/apm-stackpage/internal/snippet"
	"github.com/elastic/apm-stackpage/internal/stacktrace"
)

func newHandler(t *testing.T, parse func(error) ([]model.StackFrame, error)) *Handler {
	t.Helper()
	require.NoError(t, logp.DevelopmentSetup(logp.ToObserverOutput()))
	h := New(snippet.Coordinator{Resolver: snippet.Resolver{
		Reader: snippet.FileReader{},
		Filter: snippet.PathFilter{Excluded: snippet.DefaultExcludedPaths, ExcludeLibraryFrames: true},
	}})
	if parse != nil {
		h.Parse = parse
	}
	return h
}

func staticFrames(frames ...model.StackFrame) func(error) ([]model.StackFrame, error) {
	return func(error) ([]model.StackFrame, error) { return frames, nil }
}

func writeLines(t *testing.T, n int) string {
	t.Helper()
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "l" + string(rune('0'+(i+1)%10))
	}
	path := filepath.Join(t.TempDir(), "lib.js")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	return path
}

func TestResolve(t *testing.T) {
	path := writeLines(t, 14)
	h := newHandler(t, staticFrames(
		model.StackFrame{Function: "foo", Filename: path, Lineno: 10, Colno: 3},
		model.StackFrame{Function: "listOnTimeout", Filename: "timers.js", Lineno: 1},
	))

	result := h.Resolve(context.Background(), errors.New("sample error"))
	require.False(t, result.Fallback())
	assert.Equal(t, "sample error", result.Message)
	require.Len(t, result.Frames, 1)
	assert.Equal(t, "foo", result.Frames[0].Function)
	assert.Equal(t, strings.Join([]string{
		"l6", "l7", "l8", "l9", "<strong>l0</strong>", "l1", "l2", "l3", "l4",
	}, "\n"), result.Frames[0].Content)
	assert.Empty(t, logp.ObserverLogs().FilterLevelExact(zapcore.ErrorLevel).TakeAll())
}

func TestResolveOnlyNonLocalFrames(t *testing.T) {
	h := newHandler(t, staticFrames(
		model.StackFrame{Function: "processTicksAndRejections", Filename: "node:timers", Lineno: 1},
		model.StackFrame{Function: "handle", Filename: "/app/node_modules/express/lib/router/layer.js", Lineno: 95},
	))

	result := h.Resolve(context.Background(), errors.New("sample error"))
	assert.False(t, result.Fallback())
	assert.NotNil(t, result.Frames)
	assert.Empty(t, result.Frames)
}

func TestResolveMissingSourceFallsBack(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.js")
	h := newHandler(t, staticFrames(
		model.StackFrame{Function: "a", Filename: missing, Lineno: 3},
		model.StackFrame{Function: "b", Filename: missing, Lineno: 7},
	))

	err := errors.New("sample error")
	result := h.Resolve(context.Background(), err)
	require.True(t, result.Fallback())
	assert.ErrorIs(t, result.Err, fs.ErrNotExist)
	assert.Nil(t, result.Frames)
	assert.Equal(t, "sample error", result.Message)
	assert.Equal(t, stacktrace.Raw(err), result.Stacktrace)

	entries := logp.ObserverLogs().FilterLevelExact(zapcore.ErrorLevel).TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, logs.Stacktrace, entries[0].LoggerName)
	assert.Contains(t, entries[0].ContextMap()["error"], "gone.js")
}

func TestResolveWithoutStacktrace(t *testing.T) {
	h := newHandler(t, nil)

	result := h.Resolve(context.Background(), stderrors.New("sample error"))
	require.True(t, result.Fallback())
	assert.Equal(t, "sample error", result.Stacktrace)
	assert.Empty(t, logp.ObserverLogs().FilterLevelExact(zapcore.ErrorLevel).TakeAll())
}

func TestResolveRealError(t *testing.T) {
	h := newHandler(t, nil)

	result := h.Resolve(context.Background(), errors.New("sample error"))
	require.False(t, result.Fallback(), "%v", result.Err)
	require.NotEmpty(t, result.Frames)
	top := result.Frames[0]
	assert.Equal(t, "TestResolveRealError", top.Function)
	assert.True(t, strings.HasSuffix(top.Filename, "errorpage_test.go"))
	assert.Contains(t, top.Content, `<strong>	result := h.Resolve(context.Background(), errors.New(&#34;sample error&#34;))</strong>`)
}

func TestResolvePanic(t *testing.T) {
	t.Run("Value", func(t *testing.T) {
		h := newHandler(t, nil)
		var result model.Result
		func() {
			defer func() {
				if r := recover(); r != nil {
					result = h.ResolvePanic(context.Background(), r, debug.Stack())
				}
			}()
			panic("boom")
		}()

		require.False(t, result.Fallback(), "%v", result.Err)
		assert.Equal(t, "boom", result.Message)
		assert.True(t, strings.HasPrefix(result.Stacktrace, "panic: boom\n\ngoroutine "))
		require.NotEmpty(t, result.Frames)
		for _, frame := range result.Frames {
			assert.False(t, frame.LibraryFrame)
			assert.NotEmpty(t, frame.Content)
		}
	})

	t.Run("ErrorWithStack", func(t *testing.T) {
		h := newHandler(t, nil)
		err := errors.New("wrapped boom")
		result := h.ResolvePanic(context.Background(), err, nil)

		require.False(t, result.Fallback(), "%v", result.Err)
		assert.Equal(t, "wrapped boom", result.Message)
		assert.Equal(t, "TestResolvePanic.func2", result.Frames[0].Function)
	})

	t.Run("Unparseable", func(t *testing.T) {
		h := newHandler(t, nil)
		result := h.ResolvePanic(context.Background(), 42, []byte("no frames here"))

		require.True(t, result.Fallback())
		assert.Equal(t, "42", result.Message)
		assert.Equal(t, "panic: 42\n\nno frames here", result.Stacktrace)
	})
}

func TestWrite(t *testing.T) {
	t.Run("ErrorPage", func(t *testing.T) {
		path := writeLines(t, 14)
		h := newHandler(t, staticFrames(model.StackFrame{Function: "foo", Filename: path, Lineno: 10, Colno: 3}))
		c, rec := newContext()
		h.Write(c, errors.New("sample error"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, render.ContentTypeHTML, rec.Header().Get("Content-Type"))
		assert.Equal(t, request.IDResponseValidErrorPage, c.Result.ID)
		assert.Contains(t, rec.Body.String(), "<h1>sample error</h1>")
		assert.Contains(t, rec.Body.String(), "<li>at foo ("+path+":10:3)")
		assert.Contains(t, rec.Body.String(), "<strong>l0</strong>")
	})

	t.Run("RawStacktrace", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "gone.js")
		h := newHandler(t, staticFrames(model.StackFrame{Function: "foo", Filename: missing, Lineno: 3}))
		c, rec := newContext()
		err := errors.New("sample error")
		h.Write(c, err)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, render.ContentTypeText, rec.Header().Get("Content-Type"))
		assert.Equal(t, request.IDResponseValidRawStacktrace, c.Result.ID)
		assert.NoError(t, c.Result.Err)
		assert.Equal(t, stacktrace.Raw(err), rec.Body.String())
	})
}

func TestPanicPage(t *testing.T) {
	h := newHandler(t, nil)
	contentType, body := h.PanicPage(context.Background(), "boom", []byte("not a stack"))
	assert.Equal(t, render.ContentTypeText, contentType)
	assert.Equal(t, "panic: boom\n\nnot a stack", string(body))
}

func newContext() (*request.Context, *httptest.ResponseRecorder) {
	c := &request.Context{}
	rec := httptest.NewRecorder()
	c.Reset(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	return c, rec
}
