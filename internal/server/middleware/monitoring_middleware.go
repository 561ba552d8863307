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
	"sync"

	"github.com/elastic/elastic-agent-libs/monitoring"

	"github.com/elastic/apm-stackpage/internal/server/request"
)

// registryMu guards lookups and registrations of counters shared across middlewares.
var registryMu sync.Mutex

type monitoringMapper struct {
	mu                sync.RWMutex
	resultIDToCounter map[request.ResultID]*monitoring.Int
	registry          *monitoring.Registry
}

// MonitoringMiddleware returns a middleware that increases monitoring counters for collecting metrics
// about request processing. Counters are registered lazily in registry, named after the request.ResultID.
func MonitoringMiddleware(registry *monitoring.Registry) Middleware {
	return func(h request.Handler) (request.Handler, error) {
		mapper := &monitoringMapper{resultIDToCounter: map[request.ResultID]*monitoring.Int{}, registry: registry}

		return func(c *request.Context) {
			mapper.inc(request.IDRequestCount)

			h(c)

			mapper.inc(request.IDResponseCount)
			if c.Result.Failure() {
				mapper.inc(request.IDResponseErrorsCount)
			} else {
				mapper.inc(request.IDResponseValidCount)
			}

			mapper.inc(c.Result.ID)
		}, nil
	}
}

func (m *monitoringMapper) inc(id request.ResultID) {
	m.mapID(id).Inc()
}

func (m *monitoringMapper) mapID(id request.ResultID) *monitoring.Int {
	m.mu.RLock()
	ct, ok := m.resultIDToCounter[id]
	m.mu.RUnlock()
	if ok {
		return ct
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ct, ok := m.resultIDToCounter[id]; ok {
		return ct
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	ct, ok = m.registry.Get(string(id)).(*monitoring.Int)
	if !ok {
		ct = monitoring.NewInt(m.registry, string(id))
	}
	m.resultIDToCounter[id] = ct
	return ct
}
