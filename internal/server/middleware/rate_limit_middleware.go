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
	"strconv"

	"github.com/elastic/apm-stackpage/internal/server/headers"
	"github.com/elastic/apm-stackpage/internal/server/ratelimit"
	"github.com/elastic/apm-stackpage/internal/server/request"
)

// BurstMultiplier is the factor by which a client may exceed its per second limit in bursts.
const BurstMultiplier = 3

// RateLimitMiddleware rejects requests from client IPs that exceed their
// allowance in store with 429 Too Many Requests.
func RateLimitMiddleware(store *ratelimit.Store) Middleware {
	return func(h request.Handler) (request.Handler, error) {
		return func(c *request.Context) {
			if !store.ForIP(c.ClientIP).Allow() {
				c.ResponseWriter.Header().Set(headers.RetryAfter, strconv.Itoa(1))
				c.Result.SetDefault(request.IDResponseErrorsRateLimit)
				c.WriteResult()
				return
			}
			h(c)
		}, nil
	}
}
