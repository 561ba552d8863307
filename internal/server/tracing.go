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

package server

import (
	"net/http"

	"go.elastic.co/apm"

	"github.com/elastic/apm-stackpage/internal/config"
	"github.com/elastic/apm-stackpage/internal/server/api"
	"github.com/elastic/apm-stackpage/internal/version"
)

const serviceName = "apm-stackpage"

// newTracer returns a tracer reporting the server's own requests. Transport
// settings such as the APM Server URL are read from ELASTIC_APM_* variables.
func newTracer(cfg config.InstrumentationConfig) (*apm.Tracer, error) {
	return apm.NewTracerOptions(apm.TracerOptions{
		ServiceName:        serviceName,
		ServiceVersion:     version.Version,
		ServiceEnvironment: cfg.Environment,
	})
}

func doNotTrace(req *http.Request) bool {
	// Browsers request the icon alongside every page.
	return req.URL.Path == api.FaviconPath
}
