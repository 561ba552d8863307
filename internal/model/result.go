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

// Result is the outcome of resolving a single error event for rendering.
//
// Exactly one of two shapes is rendered: when Err is nil the page lists
// Frames, otherwise the raw Stacktrace is written verbatim.
type Result struct {
	Message    string
	Frames     []StackFrame
	Stacktrace string
	Err        error
}

// Fallback reports whether the raw stack trace must be rendered
// instead of the resolved frames.
func (r Result) Fallback() bool {
	return r.Err != nil
}
