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
	"time"

	"github.com/gofrs/uuid"
	"go.elastic.co/apm"

	"github.com/elastic/elastic-agent-libs/logp"

	"github.com/elastic/apm-stackpage/internal/logs"
	"github.com/elastic/apm-stackpage/internal/server/headers"
	"github.com/elastic/apm-stackpage/internal/server/request"
)

// LogMiddleware returns a middleware taking care of logging processing a request in the middleware and the request handler
func LogMiddleware() Middleware {
	return func(h request.Handler) (request.Handler, error) {
		logger := logp.NewLogger(logs.Request)
		return func(c *request.Context) {
			args, err := requestArgs(c)
			if err != nil {
				id := request.IDResponseErrorsInternal
				logger.Errorw(request.StatusOf(id).Keyword, "error", err)
				c.Result.SetWithError(id, err)
				c.WriteResult()
				return
			}
			c.Logger = logger.With(args...)
			h(c)

			if c.MultipleWriteAttempts() {
				c.Logger.Warn("multiple write attempts")
			}
			keyword := c.Result.Keyword
			if keyword == "" {
				keyword = "handled request"
			}
			args = resultArgs(c)
			if c.Result.Failure() {
				c.Logger.Errorw(keyword, args...)
				return
			}
			c.Logger.Infow(keyword, args...)
		}, nil
	}
}

func requestArgs(c *request.Context) ([]interface{}, error) {
	var reqID, transactionID, traceID string
	tx := apm.TransactionFromContext(c.Request.Context())
	if tx != nil {
		// This request is being traced, grab its IDs to add to logs.
		traceContext := tx.TraceContext()
		transactionID = traceContext.Span.String()
		traceID = traceContext.Trace.String()
		reqID = transactionID
	} else {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, err
		}
		reqID = id.String()
	}

	args := []interface{}{
		"http.request.id", reqID,
		"http.request.method", c.Request.Method,
		"http.request.body.bytes", c.Request.ContentLength,
		"source.address", c.ClientIP.String(),
		"user_agent.original", c.Request.Header.Get(headers.UserAgent),
		"url.original", c.Request.URL.String(),
	}
	if traceID != "" {
		args = append(args, "trace.id", traceID, "transaction.id", transactionID)
	}
	return args, nil
}

func resultArgs(c *request.Context) []interface{} {
	args := []interface{}{
		"http.response.status_code", c.Result.StatusCode,
		"event.duration", time.Since(c.Timestamp),
	}
	if c.Result.Err != nil {
		args = append(args, "error.message", c.Result.Err.Error())
	}
	if c.Result.Stacktrace != "" {
		args = append(args, "error.stack_trace", c.Result.Stacktrace)
	}
	return args
}
