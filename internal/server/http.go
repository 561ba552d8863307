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
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/libp2p/go-reuseport"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/elastic/elastic-agent-libs/logp"

	"github.com/elastic/apm-stackpage/internal/config"
)

func newHTTPServer(cfg *config.Config, handler http.Handler, logger *logp.Logger) *http.Server {
	return &http.Server{
		Handler:        handler,
		IdleTimeout:    cfg.IdleTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: cfg.MaxHeaderSize,
		ErrorLog:       newErrorLog(logger),
	}
}

// listenAddr splits host into the network and address to listen on.
// A host without a port gets config.DefaultPort.
func listenAddr(host string) (network, address string) {
	if u, err := url.Parse(host); err == nil && u.Scheme == "unix" {
		return "unix", u.Path
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		// Splitting a host with too many colons fails again after
		// joining, which surfaces the error on listen.
		return "tcp", net.JoinHostPort(host, config.DefaultPort)
	}
	return "tcp", host
}

// listen opens the listener for cfg.Host, limited to cfg.MaxConnections
// concurrent connections when set.
func listen(cfg *config.Config, logger *logp.Logger) (net.Listener, error) {
	network, address := listenAddr(cfg.Host)
	var (
		listener net.Listener
		err      error
	)
	switch network {
	case "unix":
		// SO_REUSEPORT is not available for unix sockets
		listener, err = net.Listen(network, address)
	default:
		listener, err = reuseport.Listen(network, address)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", cfg.Host)
	}

	if addr := listener.Addr(); addr.Network() == "tcp" {
		logger.Infof("Listening on: %s", addr)
	} else {
		logger.Infof("Listening on: %s:%s", addr.Network(), addr)
	}
	if cfg.MaxConnections > 0 {
		logger.Debugf("Connection limit set to: %d", cfg.MaxConnections)
		listener = netutil.LimitListener(listener, cfg.MaxConnections)
	}
	return listener, nil
}

// newErrorLog routes net/http's internal error log to logger.
func newErrorLog(logger *logp.Logger) *log.Logger {
	return log.New(errorLogWriter{
		logger: logger.Named("http").WithOptions(zap.AddCallerSkip(3)),
	}, "", 0)
}

type errorLogWriter struct {
	logger *logp.Logger
}

func (w errorLogWriter) Write(p []byte) (int, error) {
	w.logger.Error(strings.TrimSpace(string(p)))
	return len(p), nil
}
