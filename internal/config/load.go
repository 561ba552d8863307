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
	"strings"

	"github.com/elastic/go-ucfg"
	"github.com/elastic/go-ucfg/yaml"
	"github.com/pkg/errors"

	"github.com/elastic/elastic-agent-libs/logp"

	"github.com/elastic/apm-stackpage/internal/logs"
)

// DefaultFile is the configuration file read when none is given explicitly.
const DefaultFile = "apm-stackpage.yml"

var ucfgOptions = []ucfg.Option{
	ucfg.PathSep("."),
	ucfg.ResolveEnv,
	ucfg.VarExp,
}

// Load reads the yaml file at path, applies the key=value overrides in order,
// and unpacks the result on top of DefaultConfig. An empty path skips the file.
func Load(path string, overrides []string) (*Config, error) {
	logger := logp.NewLogger(logs.Config)
	merged := ucfg.New()
	if path != "" {
		fileCfg, err := yaml.NewConfigWithFile(path, ucfgOptions...)
		if err != nil {
			return nil, errors.Wrapf(err, "error loading config file %s", path)
		}
		if err := merged.Merge(fileCfg, ucfgOptions...); err != nil {
			return nil, errors.Wrapf(err, "error merging config file %s", path)
		}
		logger.Debugf("loaded config file %s", path)
	}
	for _, override := range overrides {
		key, value, ok := strings.Cut(override, "=")
		if !ok || key == "" {
			return nil, errors.Errorf("invalid setting %q, expected key=value", override)
		}
		if err := merged.Merge(map[string]interface{}{key: value}, ucfgOptions...); err != nil {
			return nil, errors.Wrapf(err, "error applying setting %s", key)
		}
	}
	return NewConfig(merged)
}

// ResolveFile returns path when it was given explicitly or names an existing
// file, and "" otherwise, so that a missing default file is not an error.
func ResolveFile(path string, explicit bool) string {
	if explicit {
		return path
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
