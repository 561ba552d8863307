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
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/ryanuber/go-glob"

	"github.com/elastic/apm-stackpage/internal/snippet"
)

// SnippetConfig holds config information about attaching source snippets to stack frames.
type SnippetConfig struct {
	ExcludedPaths          []string           `config:"excluded_paths,replace"`
	ExcludeStandardLibrary bool               `config:"exclude_standard_library"`
	MaxConcurrency         int                `config:"max_concurrency"`
	Cache                  SnippetCacheConfig `config:"cache"`
}

// SnippetCacheConfig holds config information about caching source files.
type SnippetCacheConfig struct {
	Enabled    bool          `config:"enabled"`
	Expiration time.Duration `config:"expiration"`
	Watch      bool          `config:"watch"`
}

func defaultSnippetConfig() SnippetConfig {
	return SnippetConfig{
		ExcludedPaths:          append([]string(nil), snippet.DefaultExcludedPaths...),
		ExcludeStandardLibrary: true,
		Cache: SnippetCacheConfig{
			Expiration: 5 * time.Minute,
			Watch:      true,
		},
	}
}

// PathFilter returns the filter deciding which frames get a snippet.
func (c SnippetConfig) PathFilter() snippet.PathFilter {
	return snippet.PathFilter{
		Excluded:             c.ExcludedPaths,
		ExcludeLibraryFrames: c.ExcludeStandardLibrary,
	}
}

// Validate checks the snippet settings.
func (c SnippetConfig) Validate() error {
	var result *multierror.Error
	for _, pattern := range c.ExcludedPaths {
		// patterns matching the empty name, such as "*", exclude every frame
		if glob.Glob(pattern, "") {
			result = multierror.Append(result, errors.Errorf("snippet.excluded_paths: pattern %q is empty or matches every path", pattern))
		}
	}
	if c.MaxConcurrency < 0 {
		result = multierror.Append(result, errors.New("snippet.max_concurrency must not be negative"))
	}
	if c.Cache.Enabled && c.Cache.Expiration <= 0 {
		result = multierror.Append(result, errors.New("snippet.cache.expiration must be positive"))
	}
	return result.ErrorOrNil()
}
