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

// Package stacktrace converts the stack traces attached to errors
// into ordered model.StackFrame values.
package stacktrace

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/pkg/errors"
	"go.elastic.co/apm/stacktrace"

	"github.com/elastic/apm-stackpage/internal/model"
)

var (
	// ErrNoStacktrace is returned by Parse for errors without an attached stack trace.
	ErrNoStacktrace = errors.New("error does not carry a stack trace")

	// ErrUnparseable is returned by ParseText when no frame could be found in the text.
	ErrUnparseable = errors.New("no stack frames found in stack trace")
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Parse returns the frames of the stack trace recorded where err was created,
// innermost call first.
//
// The stack trace is taken from the innermost error in err's chain that
// implements StackTrace() errors.StackTrace, which is the origin of the error
// for errors created or wrapped with github.com/pkg/errors.
func Parse(err error) ([]model.StackFrame, error) {
	st := innermostStackTracer(err)
	if st == nil {
		return nil, ErrNoStacktrace
	}
	trace := st.StackTrace()
	if len(trace) == 0 {
		return nil, ErrNoStacktrace
	}
	pcs := make([]uintptr, len(trace))
	for i, f := range trace {
		pcs[i] = uintptr(f)
	}

	frames := make([]model.StackFrame, 0, len(pcs))
	callers := runtime.CallersFrames(pcs)
	for {
		rf, more := callers.Next()
		frames = append(frames, newFrame(stacktrace.RuntimeFrame(rf)))
		if !more {
			break
		}
	}
	return frames, nil
}

// Raw returns the raw textual stack trace of err: its message followed
// by the recorded frames, if any.
func Raw(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", err)
}

func innermostStackTracer(err error) stackTracer {
	var found stackTracer
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			found = st
		}
		err = errors.Unwrap(err)
	}
	return found
}

func newFrame(f stacktrace.Frame) model.StackFrame {
	module, function := stacktrace.SplitFunctionName(f.Function)
	return model.StackFrame{
		Function:     function,
		Module:       module,
		Filename:     f.File,
		Lineno:       f.Line,
		LibraryFrame: IsStandardLibrary(module),
	}
}

var mainModule = func() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.Main.Path
	}
	return ""
}()

// IsStandardLibrary reports whether pkg is a package of the Go standard library.
//
// Standard library import paths never contain a dot in their first element,
// while module paths of third-party code do.
func IsStandardLibrary(pkg string) bool {
	if pkg == "" || pkg == "main" {
		return false
	}
	if mainModule != "" && (pkg == mainModule || strings.HasPrefix(pkg, mainModule+"/")) {
		return false
	}
	first := pkg
	if i := strings.IndexByte(pkg, '/'); i >= 0 {
		first = pkg[:i]
	}
	return !strings.Contains(first, ".")
}
