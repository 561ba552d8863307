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
	"github.com/pkg/errors"
	"go.elastic.co/apm"

	"github.com/elastic/apm-stackpage/internal/errorpage"
	"github.com/elastic/apm-stackpage/internal/render"
	"github.com/elastic/apm-stackpage/internal/server/request"
)

const greeting = "Hello World!"

func rootHandler(c *request.Context) {
	c.Result.SetDefault(request.IDResponseValidOK)
	c.WriteBody(render.ContentTypeHTML, []byte(greeting))
}

func faviconHandler(c *request.Context) {
	c.Result.SetDefault(request.IDResponseValidOK)
	c.WriteResult()
}

func newErrorPageHandler(pages *errorpage.Handler) request.Handler {
	return func(c *request.Context) {
		err := sampleError()
		if tx := apm.TransactionFromContext(c.Request.Context()); tx != nil {
			apm.CaptureError(c.Request.Context(), err).Send()
		}
		pages.Write(c, err)
	}
}

// sampleError is raised for every request not served by another route.
func sampleError() error {
	return errors.New("sample error")
}
