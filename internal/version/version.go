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

package version

// Version is the release version of apm-stackpage.
const Version = "0.1.0"

// These are set at build time via -ldflags.
var (
	commit    = "unknown"
	buildTime = "unknown"
)

// Commit returns the commit hash the binary was built from.
func Commit() string {
	return commit
}

// BuildTime returns the time the binary was built.
func BuildTime() string {
	return buildTime
}
