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
	httppprof "net/http/pprof"

	"github.com/elastic/elastic-agent-libs/logp"
	"github.com/elastic/elastic-agent-libs/monitoring"

	"github.com/elastic/apm-stackpage/internal/config"
	"github.com/elastic/apm-stackpage/internal/errorpage"
	"github.com/elastic/apm-stackpage/internal/logs"
	"github.com/elastic/apm-stackpage/internal/server/middleware"
	"github.com/elastic/apm-stackpage/internal/server/ratelimit"
	"github.com/elastic/apm-stackpage/internal/server/request"
)

const (
	// RootPath defines the server's root path
	RootPath = "/"

	// FaviconPath defines the path browsers request the site icon from
	FaviconPath = "/favicon.ico"

	pprofPath = "/debug/pprof"
)

// NewMux creates a new http.ServeMux, with routes registered for the greeting,
// the favicon and the error page served for every other path.
func NewMux(
	cfg *config.Config,
	pages *errorpage.Handler,
	ratelimitStore *ratelimit.Store,
	logger *logp.Logger,
	statsRegistry *monitoring.Registry,
) (*http.ServeMux, error) {
	pool := request.NewContextPool()
	logger = logger.Named(logs.Handler)
	router := http.NewServeMux()

	builder := routeBuilder{
		cfg:            cfg,
		pages:          pages,
		ratelimitStore: ratelimitStore,
		statsRegistry:  statsRegistry,
	}

	type route struct {
		path      string
		handlerFn func() (request.Handler, error)
	}

	routeMap := []route{
		{RootPath, builder.errorPageHandler},
		{http.MethodGet + " " + RootPath + "{$}", builder.rootHandler},
		{FaviconPath, builder.faviconHandler},
	}

	for _, route := range routeMap {
		h, err := route.handlerFn()
		if err != nil {
			return nil, err
		}
		logger.Debugf("Path %s added to request handler", route.path)
		router.Handle(route.path, pool.HTTPHandler(h))
	}
	if cfg.Expvar.Enabled {
		path := cfg.Expvar.URL
		logger.Debugf("Path %s added to request handler", path)
		router.Handle(path, debugVarsHandler(statsRegistry))
	}
	if cfg.Pprof.Enabled {
		logger.Debugf("Path %s added to request handler", pprofPath)
		router.Handle(pprofPath+"/", http.HandlerFunc(httppprof.Index))
		router.Handle(pprofPath+"/cmdline", http.HandlerFunc(httppprof.Cmdline))
		router.Handle(pprofPath+"/profile", http.HandlerFunc(httppprof.Profile))
		router.Handle(pprofPath+"/symbol", http.HandlerFunc(httppprof.Symbol))
		router.Handle(pprofPath+"/trace", http.HandlerFunc(httppprof.Trace))
	}
	return router, nil
}

type routeBuilder struct {
	cfg            *config.Config
	pages          *errorpage.Handler
	ratelimitStore *ratelimit.Store
	statsRegistry  *monitoring.Registry
}

func (r *routeBuilder) rootHandler() (request.Handler, error) {
	return middleware.Wrap(rootHandler, r.middleware()...)
}

func (r *routeBuilder) faviconHandler() (request.Handler, error) {
	return middleware.Wrap(faviconHandler, r.middleware()...)
}

func (r *routeBuilder) errorPageHandler() (request.Handler, error) {
	return middleware.Wrap(newErrorPageHandler(r.pages), r.middleware()...)
}

func (r *routeBuilder) middleware() []middleware.Middleware {
	m := []middleware.Middleware{
		middleware.LogMiddleware(),
		middleware.RecoverPanicMiddleware(r.pages.PanicPage),
		middleware.MonitoringMiddleware(r.statsRegistry),
		middleware.ResponseHeadersMiddleware(r.cfg.ResponseHeaders),
	}
	if r.ratelimitStore != nil {
		m = append(m, middleware.RateLimitMiddleware(r.ratelimitStore))
	}
	return m
}
