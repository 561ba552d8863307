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

package snippet

import (
	"html"
	"strings"
)

const (
	// linesBefore and linesAfter define the window [lineno-5, lineno+4)
	// of 0-based line indices around a 1-based line number.
	linesBefore = 5
	linesAfter  = 4

	// emphasisOffset is the distance of the emphasized line from the end
	// of the window. It is fixed, so windows cut short by the end of the
	// file emphasize a line before the reported one.
	emphasisOffset = 5
)

// Window returns the lines of content around the 1-based line number lineno.
//
// The window starts at most linesBefore lines before the reported line and is
// clipped at the start of the file; past the end of the file it simply holds
// fewer lines.
func Window(content string, lineno int) []string {
	lines := strings.Split(content, "\n")
	start := lineno - linesBefore
	if start < 0 {
		start = 0
	}
	end := lineno + linesAfter
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		start = end
	}
	return lines[start:end]
}

// Emphasize wraps the line at len(window)-5 in <strong> tags, in place.
// Windows shorter than five lines are left untouched.
func Emphasize(window []string) {
	if i := len(window) - emphasisOffset; i >= 0 {
		window[i] = "<strong>" + window[i] + "</strong>"
	}
}

// Snippet returns the HTML-escaped window of content around lineno,
// with the emphasized line decorated and the lines joined by newlines.
func Snippet(content string, lineno int) string {
	window := Window(content, lineno)
	for i, line := range window {
		window[i] = html.EscapeString(line)
	}
	Emphasize(window)
	return strings.Join(window, "\n")
}
