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

// Package render renders resolved stack traces as HTML pages.
package render

import (
	"bytes"
	"html/template"
	"io"

	"github.com/elastic/apm-stackpage/internal/model"
)

const (
	// ContentTypeHTML is the content type of pages listing resolved frames.
	ContentTypeHTML = "text/html; charset=utf-8"

	// ContentTypeText is the content type of raw stack trace pages.
	ContentTypeText = "text/plain; charset=utf-8"

	anonymousFunction = "anonymous"
)

var pageTemplate = template.Must(template.New("page").Parse(
	`<h1>{{.Message}}</h1><ul>` +
		`{{range .Frames}}<li>at {{.Function}} ({{.Location}})<p><pre><code>{{.Content}}</code></pre><p></li>{{end}}` +
		`</ul>`,
))

type pageView struct {
	Message string
	Frames  []frameView
}

type frameView struct {
	Function string
	Location string
	Content  template.HTML
}

// HTML writes the page listing frames under message to w.
//
// Frame content is expected to be escaped HTML, as produced by snippet.Snippet.
// Frames without a function name are listed as "anonymous".
func HTML(w io.Writer, message string, frames []model.StackFrame) error {
	view := pageView{Message: message, Frames: make([]frameView, len(frames))}
	for i, frame := range frames {
		function := frame.QualifiedFunction()
		if function == "" {
			function = anonymousFunction
		}
		view.Frames[i] = frameView{
			Function: function,
			Location: frame.Location(),
			Content:  template.HTML(frame.Content),
		}
	}
	return pageTemplate.Execute(w, view)
}

// Fallback returns the body of a raw stack trace page, which is
// the stack trace itself.
func Fallback(stacktrace string) []byte {
	return []byte(stacktrace)
}

// Page renders result, returning the content type and body of the response.
func Page(result model.Result) (string, []byte, error) {
	if result.Fallback() {
		return ContentTypeText, Fallback(result.Stacktrace), nil
	}
	var buf bytes.Buffer
	if err := HTML(&buf, result.Message, result.Frames); err != nil {
		return "", nil, err
	}
	return ContentTypeHTML, buf.Bytes(), nil
}
