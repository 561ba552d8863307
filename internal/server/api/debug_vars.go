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

package api

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/elastic/elastic-agent-libs/monitoring"

	"github.com/elastic/apm-stackpage/internal/server/headers"
)

// debugVarsHandler serves a snapshot of registry in the style of expvar.
func debugVarsHandler(registry *monitoring.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot := monitoring.CollectStructSnapshot(registry, monitoring.Full, false)
		w.Header().Set(headers.ContentType, "application/json; charset=utf-8")
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(snapshot)
	})
}
