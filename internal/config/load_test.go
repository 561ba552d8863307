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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
host: "127.0.0.1:4000"
snippet:
  max_concurrency: 8
  cache:
    enabled: true
rate_limit:
  enabled: true
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4000", cfg.Host)
	assert.Equal(t, 8, cfg.Snippet.MaxConcurrency)
	assert.True(t, cfg.Snippet.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Snippet.Cache.Expiration)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 300, cfg.RateLimit.IPLimit)
}

func TestLoadReplacesLists(t *testing.T) {
	path := writeConfigFile(t, `
snippet:
  excluded_paths: ["*/third_party/*"]
logging:
  level: debug
  selectors: [snippet]
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"*/third_party/*"}, cfg.Snippet.ExcludedPaths)
	assert.Equal(t, []string{"snippet"}, cfg.Logging.Selectors)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfigFile(t, `host: "127.0.0.1:4000"`)

	cfg, err := Load(path, []string{
		"host=localhost:0",
		"snippet.cache.enabled=true",
		"snippet.cache.expiration=10s",
		"snippet.max_concurrency=2",
		"expvar.enabled=true",
	})
	require.NoError(t, err)
	assert.Equal(t, "localhost:0", cfg.Host)
	assert.True(t, cfg.Snippet.Cache.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Snippet.Cache.Expiration)
	assert.Equal(t, 2, cfg.Snippet.MaxConcurrency)
	assert.True(t, cfg.Expvar.Enabled)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("", []string{"pprof.enabled=true"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:3000", cfg.Host)
	assert.True(t, cfg.Pprof.Enabled)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"), nil)
	assert.Error(t, err)

	_, err = Load("", []string{"host"})
	assert.EqualError(t, err, `invalid setting "host", expected key=value`)

	_, err = Load("", []string{"max_header_size=0"})
	assert.Error(t, err)
}

func TestResolveFile(t *testing.T) {
	existing := writeConfigFile(t, "")
	missing := filepath.Join(t.TempDir(), DefaultFile)

	assert.Equal(t, existing, ResolveFile(existing, false))
	assert.Equal(t, "", ResolveFile(missing, false))
	assert.Equal(t, missing, ResolveFile(missing, true))
}
