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

// Package server runs the HTTP server serving error pages.
package server

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"go.elastic.co/apm"
	"go.elastic.co/apm/module/apmhttp"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/elastic/elastic-agent-libs/logp"
	"github.com/elastic/elastic-agent-libs/monitoring"

	"github.com/elastic/apm-stackpage/internal/config"
	"github.com/elastic/apm-stackpage/internal/errorpage"
	"github.com/elastic/apm-stackpage/internal/logs"
	"github.com/elastic/apm-stackpage/internal/server/api"
	"github.com/elastic/apm-stackpage/internal/server/middleware"
	"github.com/elastic/apm-stackpage/internal/server/ratelimit"
	"github.com/elastic/apm-stackpage/internal/snippet"
)

// Server serves the greeting, the favicon and the error pages.
// It is created with New, listening on the configured host right away,
// and serves requests until Stop is called or the context passed to Run
// is cancelled.
type Server struct {
	cfg    *config.Config
	logger *logp.Logger

	listener   net.Listener
	httpServer *http.Server
	tracer     *apm.Tracer
	cache      *snippet.CachingReader
	registry   *monitoring.Registry

	running  atomic.Bool
	stopOnce sync.Once
	stopping chan struct{}
}

// New returns a Server for cfg. If logger is nil the server logs with
// the logs.Server selector.
func New(cfg *config.Config, logger *logp.Logger) (_ *Server, err error) {
	if logger == nil {
		logger = logp.NewLogger(logs.Server)
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		registry: monitoring.NewRegistry(),
		stopping: make(chan struct{}),
	}
	defer func() {
		if err != nil {
			s.cleanup()
		}
	}()

	var reader snippet.Reader = snippet.FileReader{}
	if cfg.Snippet.Cache.Enabled {
		s.cache, err = snippet.NewCachingReader(reader, cfg.Snippet.Cache.Expiration, cfg.Snippet.Cache.Watch)
		if err != nil {
			return nil, errors.Wrap(err, "creating snippet cache")
		}
		reader = s.cache
		registerCacheStats(s.registry, s.cache)
	}
	pages := errorpage.New(snippet.Coordinator{
		Resolver: snippet.Resolver{Reader: reader, Filter: cfg.Snippet.PathFilter()},
		Limit:    cfg.Snippet.MaxConcurrency,
	})

	var store *ratelimit.Store
	if cfg.RateLimit.Enabled {
		store, err = ratelimit.NewStore(cfg.RateLimit.LRUSize, cfg.RateLimit.IPLimit, middleware.BurstMultiplier)
		if err != nil {
			return nil, errors.Wrap(err, "creating rate limit store")
		}
	}

	mux, err := api.NewMux(cfg, pages, store, logger, s.registry)
	if err != nil {
		return nil, err
	}
	var handler http.Handler = mux
	if cfg.Instrumentation.Enabled {
		s.tracer, err = newTracer(cfg.Instrumentation)
		if err != nil {
			return nil, errors.Wrap(err, "creating tracer")
		}
		handler = apmhttp.Wrap(mux,
			apmhttp.WithTracer(s.tracer),
			apmhttp.WithServerRequestIgnorer(doNotTrace),
		)
	}

	s.listener, err = listen(cfg, logger)
	if err != nil {
		return nil, err
	}
	s.httpServer = newHTTPServer(cfg, handler, logger)
	return s, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Run serves requests until Stop is called or ctx is cancelled, then shuts
// the server down gracefully within the configured shutdown timeout.
// Run may only be called once.
func (s *Server) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("server already running")
	}
	defer s.cleanup()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-s.stopping:
		}
		s.shutdown()
		return nil
	})
	return g.Wait()
}

// Stop signals the server to shut down. It does not wait for Run to return.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stopping) })
}

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Infof("Stop listening on: %s", s.listener.Addr())
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Errorf("error stopping http server: %s", err.Error())
		if err := s.httpServer.Close(); err != nil {
			s.logger.Errorf("error closing http server: %s", err.Error())
		}
	}
}

func (s *Server) cleanup() {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Errorf("error closing snippet cache: %s", err.Error())
		}
	}
	if s.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.tracer.Flush(ctx.Done())
		s.tracer.Close()
	}
}

func registerCacheStats(registry *monitoring.Registry, cache *snippet.CachingReader) {
	monitoring.NewFunc(registry, "snippet.cache", func(_ monitoring.Mode, v monitoring.Visitor) {
		v.OnRegistryStart()
		defer v.OnRegistryFinished()
		hits, misses := cache.Stats()
		monitoring.ReportInt(v, "hits", hits)
		monitoring.ReportInt(v, "misses", misses)
	})
}
