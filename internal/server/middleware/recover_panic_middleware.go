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

package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/pkg/errors"

	"github.com/elastic/apm-stackpage/internal/server/request"
)

const keywordPanic = "panic handling request"

// PanicPage renders the response body for a value recovered from a panicking handler.
type PanicPage func(ctx context.Context, value interface{}, stack []byte) (contentType string, body []byte)

// RecoverPanicMiddleware returns a middleware ensuring that the Server recovers from panics,
// while trying to write an according response. When page is non-nil it renders the response
// body, otherwise a plain error message is written.
func RecoverPanicMiddleware(page PanicPage) Middleware {
	return func(h request.Handler) (request.Handler, error) {
		return func(c *request.Context) {
			defer func() {
				if r := recover(); r != nil {
					// recover again in case setting the context's data or writing the response panics again
					defer func() {
						recover()
					}()

					id := request.IDResponseErrorsInternal
					status := request.StatusOf(id)

					var err error
					switch v := r.(type) {
					case error:
						err = v
					default:
						err = errors.New(fmt.Sprintf("%v", v))
					}
					stack := debug.Stack()
					c.Result.Set(id, status.Code, keywordPanic, keywordPanic, err)
					c.Result.Stacktrace = string(stack)

					if page == nil {
						c.WriteResult()
						return
					}
					contentType, body := page(c.Request.Context(), r, stack)
					c.WriteBody(contentType, body)
				}
			}()
			h(c)
		}, nil
	}
}
