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

package model

import (
	"strconv"
	"strings"
)

// StackFrame holds one call site of an error's stack trace.
type StackFrame struct {
	// Function holds the function name without its package path,
	// or the empty string if the function is unknown.
	Function string

	// Module holds the package path of Function, if known.
	Module string

	// Filename holds the path of the source file as reported by the runtime.
	Filename string

	// Lineno holds the 1-based line number.
	Lineno int

	// Colno holds the 1-based column number, or 0 if the stack trace
	// does not carry columns, as is the case for Go frames.
	Colno int

	// LibraryFrame reports whether the frame belongs to a library
	// or to the standard library rather than to the application.
	LibraryFrame bool

	// Content holds the decorated source snippet around Lineno.
	Content string
}

// QualifiedFunction returns the package-qualified function name.
func (f StackFrame) QualifiedFunction() string {
	if f.Module == "" || f.Function == "" {
		return f.Function
	}
	return f.Module + "." + f.Function
}

// Location returns "filename:lineno:colno", omitting the column
// when it is unknown.
func (f StackFrame) Location() string {
	var b strings.Builder
	b.WriteString(f.Filename)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(f.Lineno))
	if f.Colno > 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(f.Colno))
	}
	return b.String()
}
