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

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/elastic/elastic-agent-libs/logp"

	"github.com/elastic/apm-stackpage/internal/config"
	"github.com/elastic/apm-stackpage/internal/version"
)

func execute(ctx context.Context, args ...string) (string, error) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, "apm-stackpage version "+version.Version+" (commit unknown, built unknown)\n", out)
}

func TestRunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, args := range [][]string{
		{"run", "-E", "host=localhost:0"},
		{"-E", "host=localhost:0", "--setting", "logging.level=error"},
	} {
		_, err := execute(ctx, args...)
		assert.NoError(t, err, args)
	}
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("host: localhost:0\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := execute(ctx, "run", "-c", path)
	assert.NoError(t, err)
}

func TestRunInvalidConfig(t *testing.T) {
	_, err := execute(context.Background(), "run", "-E", "host=localhost:0", "-E", "max_header_size=0")
	assert.Error(t, err)

	_, err = execute(context.Background(), "run", "-c", filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = execute(context.Background(), "run", "-E", "host")
	assert.Error(t, err)
}

func TestConfigureLogging(t *testing.T) {
	defer logp.DevelopmentSetup()

	require.NoError(t, configureLogging(config.LoggingConfig{Level: logp.DebugLevel, Selectors: []string{"snippet"}}))
	assert.Equal(t, zapcore.DebugLevel, logp.GetLevel())

	require.NoError(t, configureLogging(config.DefaultConfig().Logging))
	assert.Equal(t, zapcore.InfoLevel, logp.GetLevel())
}
