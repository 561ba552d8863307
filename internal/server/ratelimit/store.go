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

package ratelimit

import (
	"net/netip"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/elastic/elastic-agent-libs/logp"

	"github.com/elastic/apm-stackpage/internal/logs"
)

// Store hands out one token bucket per client address, keeping at most
// size of them in an LRU.
//
// When the LRU is full, the least recently used limiter is taken over by the
// new address with whatever tokens it has left. Cycling through more client
// addresses than the store holds therefore never yields a fresh allowance.
type Store struct {
	mu     sync.Mutex
	lru    *simplelru.LRU
	size   int
	limit  rate.Limit
	burst  int
	logger *logp.Logger
}

// NewStore returns a Store of size limiters, each allowing rateLimit requests
// per second with bursts of rateLimit*burstFactor.
func NewStore(size, rateLimit, burstFactor int) (*Store, error) {
	if size <= 0 {
		return nil, errors.Errorf("rate limit store size must be positive, got %d", size)
	}
	if rateLimit < 0 {
		return nil, errors.Errorf("rate limit must not be negative, got %d", rateLimit)
	}
	lru, err := simplelru.NewLRU(size, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating rate limit store")
	}
	return &Store{
		lru:    lru,
		size:   size,
		limit:  rate.Limit(rateLimit),
		burst:  rateLimit * burstFactor,
		logger: logp.NewLogger(logs.Ratelimit),
	}, nil
}

// ForIP returns the limiter for addr.
func (s *Store) ForIP(addr netip.Addr) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.lru.Get(addr); ok {
		return v.(*rate.Limiter)
	}

	var limiter *rate.Limiter
	if s.lru.Len() >= s.size {
		oldest, v, _ := s.lru.RemoveOldest()
		limiter = v.(*rate.Limiter)
		s.logger.Debugf("reusing rate limiter of %s for %s", oldest, addr)
	} else {
		limiter = rate.NewLimiter(s.limit, s.burst)
	}
	s.lru.Add(addr, limiter)
	return limiter
}

// Len returns the number of client addresses currently tracked.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}
