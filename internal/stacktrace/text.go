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

package stacktrace

import (
	"regexp"
	"strconv"
	"strings"

	"go.elastic.co/apm/stacktrace"

	"github.com/elastic/apm-stackpage/internal/model"
)

var (
	// v8Frame matches "    at fn (file:line:col)" and "    at file:line:col".
	v8Frame = regexp.MustCompile(`^\s*at (?:(.*?) \()?(.+?):(\d+):(\d+)\)?$`)

	// goLocation matches the tab-indented location line following a function
	// line, as written by runtime/debug.Stack and by pkg/errors' %+v verb.
	goLocation = regexp.MustCompile(`^\t(.+?):(\d+)(?: \+0x[0-9a-f]+)?$`)

	goArgs      = regexp.MustCompile(`\([^()]*\)$`)
	goGoroutine = regexp.MustCompile(` in goroutine \d+$`)
)

// ParseText parses a raw textual stack trace into frames, preserving their order.
//
// Go traces as written by runtime/debug.Stack or by formatting a pkg/errors
// error with %+v are supported, as well as V8-style "at" lines, which are
// the only ones carrying column numbers.
func ParseText(text string) ([]model.StackFrame, error) {
	var frames []model.StackFrame
	var prev string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if m := goLocation.FindStringSubmatch(line); m != nil {
			if prev == "" {
				continue
			}
			lineno, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			module, function := splitGoFunction(prev)
			frames = append(frames, model.StackFrame{
				Function:     function,
				Module:       module,
				Filename:     m[1],
				Lineno:       lineno,
				LibraryFrame: IsStandardLibrary(module),
			})
			prev = ""
			continue
		}
		if m := v8Frame.FindStringSubmatch(line); m != nil {
			lineno, err1 := strconv.Atoi(m[3])
			colno, err2 := strconv.Atoi(m[4])
			if err1 != nil || err2 != nil {
				continue
			}
			frames = append(frames, model.StackFrame{
				Function: m[1],
				Filename: m[2],
				Lineno:   lineno,
				Colno:    colno,
			})
			prev = ""
			continue
		}
		prev = line
	}
	if len(frames) == 0 {
		return nil, ErrUnparseable
	}
	return frames, nil
}

func splitGoFunction(line string) (module, function string) {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "created by ")
	line = goGoroutine.ReplaceAllString(line, "")
	line = goArgs.ReplaceAllString(line, "")
	module, function = stacktrace.SplitFunctionName(line)
	if module == "" && function == "panic" {
		// the builtin is reported unqualified but lives in runtime/panic.go
		module = "runtime"
	}
	return module, function
}
