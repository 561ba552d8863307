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

package config

import (
	"net"
	"strings"
	"time"

	"github.com/elastic/go-ucfg"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/elastic/elastic-agent-libs/logp"
)

const (
	// DefaultPort of the server
	DefaultPort = "3000"

	defaultMaxHeaderSize = 1 << 20
)

// Config holds the configuration of the server.
type Config struct {
	Host            string              `config:"host"`
	MaxHeaderSize   int                 `config:"max_header_size"`
	MaxConnections  int                 `config:"max_connections"`
	ReadTimeout     time.Duration       `config:"read_timeout"`
	WriteTimeout    time.Duration       `config:"write_timeout"`
	IdleTimeout     time.Duration       `config:"idle_timeout"`
	ShutdownTimeout time.Duration       `config:"shutdown_timeout"`
	ResponseHeaders map[string][]string `config:"response_headers"`

	Snippet         SnippetConfig         `config:"snippet"`
	RateLimit       RateLimitConfig       `config:"rate_limit"`
	Instrumentation InstrumentationConfig `config:"instrumentation"`
	Expvar          ExpvarConfig          `config:"expvar"`
	Pprof           PprofConfig           `config:"pprof"`
	Logging         LoggingConfig         `config:"logging"`
}

// RateLimitConfig holds config information about per client IP rate limiting.
type RateLimitConfig struct {
	Enabled bool `config:"enabled"`
	IPLimit int  `config:"ip_limit"`
	LRUSize int  `config:"lru_size"`
}

// InstrumentationConfig holds config information about self instrumenting the server.
// The tracer reads its transport settings from the ELASTIC_APM_* environment variables.
type InstrumentationConfig struct {
	Enabled     bool   `config:"enabled"`
	Environment string `config:"environment"`
}

// ExpvarConfig holds config information about exposing expvar
type ExpvarConfig struct {
	Enabled bool   `config:"enabled"`
	URL     string `config:"url"`
}

// PprofConfig holds config information about exposing pprof
type PprofConfig struct {
	Enabled bool `config:"enabled"`
}

// LoggingConfig holds the subset of logp settings exposed by the server.
type LoggingConfig struct {
	Level     logp.Level `config:"level"`
	Selectors []string   `config:"selectors,replace"`
}

// DefaultConfig returns a config with default settings.
func DefaultConfig() *Config {
	return &Config{
		Host:            net.JoinHostPort("localhost", DefaultPort),
		MaxHeaderSize:   defaultMaxHeaderSize,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     45 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		ResponseHeaders: map[string][]string{},
		Snippet:         defaultSnippetConfig(),
		RateLimit: RateLimitConfig{
			IPLimit: 300,
			LRUSize: 1000,
		},
		Expvar: ExpvarConfig{
			URL: "/debug/vars",
		},
		Logging: LoggingConfig{
			Level: logp.InfoLevel,
		},
	}
}

// NewConfig creates a Config struct based on the default config and the given input params
func NewConfig(cfg *ucfg.Config) (*Config, error) {
	c := DefaultConfig()
	if cfg != nil {
		if err := cfg.Unpack(c, ucfgOptions...); err != nil {
			return nil, errors.Wrap(err, "Error processing configuration")
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.Host == "" {
		result = multierror.Append(result, errors.New("host must not be empty"))
	}
	if c.MaxHeaderSize <= 0 {
		result = multierror.Append(result, errors.New("max_header_size must be positive"))
	}
	if c.MaxConnections < 0 {
		result = multierror.Append(result, errors.New("max_connections must not be negative"))
	}
	for name, d := range map[string]time.Duration{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"idle_timeout":     c.IdleTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if d < 0 {
			result = multierror.Append(result, errors.Errorf("%s must not be negative", name))
		}
	}
	if err := c.Snippet.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.RateLimit.Enabled && (c.RateLimit.IPLimit <= 0 || c.RateLimit.LRUSize <= 0) {
		result = multierror.Append(result, errors.New("rate_limit.ip_limit and rate_limit.lru_size must be positive"))
	}
	if c.Expvar.Enabled && !strings.HasPrefix(c.Expvar.URL, "/") {
		result = multierror.Append(result, errors.Errorf("expvar.url %q must start with /", c.Expvar.URL))
	}
	return result.ErrorOrNil()
}
