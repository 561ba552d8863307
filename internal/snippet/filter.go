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
	"path/filepath"
	"strings"

	"github.com/ryanuber/go-glob"

	"github.com/elastic/apm-stackpage/internal/model"
)

// DefaultExcludedPaths holds the glob patterns of installed dependency
// directories whose frames never get a snippet.
var DefaultExcludedPaths = []string{
	"*/vendor/*",
	"*/node_modules/*",
	"*/pkg/mod/*",
}

// PathFilter decides which frames refer to project-local source files.
type PathFilter struct {
	// Excluded holds glob patterns matched against the slash-separated
	// file name. A leading slash is added to relative names before
	// matching, so "*/vendor/*" also matches "vendor/foo.go".
	Excluded []string

	// ExcludeLibraryFrames excludes frames flagged as library frames,
	// such as frames of the Go standard library.
	ExcludeLibraryFrames bool
}

// Local reports whether frame points to a project-local file: its name
// contains a path separator and does not match any excluded pattern.
func (f PathFilter) Local(frame model.StackFrame) bool {
	name := filepath.ToSlash(frame.Filename)
	if !strings.Contains(name, "/") {
		return false
	}
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	for _, pattern := range f.Excluded {
		if glob.Glob(pattern, name) {
			return false
		}
	}
	return !(f.ExcludeLibraryFrames && frame.LibraryFrame)
}
