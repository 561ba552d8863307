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

package snippet

import (
	"context"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/atomic"

	"github.com/elastic/elastic-agent-libs/logp"

	"github.com/elastic/apm-stackpage/internal/logs"
)

// CachingReader wraps a Reader, caching file contents in memory for the
// configured expiration and reading from the wrapped Reader on cache misses.
//
// Failed reads are never cached. When watching is enabled, cached files are
// invalidated as soon as they are written, removed or renamed.
type CachingReader struct {
	backend Reader
	cache   *gocache.Cache
	watcher *fsnotify.Watcher
	logger  *logp.Logger

	hits   atomic.Int64
	misses atomic.Int64

	closeOnce sync.Once
	closing   chan struct{}
	done      chan struct{}
}

// NewCachingReader returns a CachingReader wrapping backend. Close must be
// called to release the goroutine evicting expired and invalidated entries.
func NewCachingReader(backend Reader, expiration time.Duration, watch bool) (*CachingReader, error) {
	r := &CachingReader{
		backend: backend,
		// Expired entries are deleted by run rather than by go-cache's janitor.
		cache:   gocache.New(expiration, 0),
		logger:  logp.NewLogger(logs.Snippet),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		r.watcher = watcher
	}
	go r.run(expiration)
	return r, nil
}

// ReadFile returns the cached content of name, or reads it from the backend.
func (r *CachingReader) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if v, found := r.cache.Get(name); found {
		r.hits.Inc()
		return v.([]byte), nil
	}
	r.misses.Inc()
	data, err := r.backend.ReadFile(ctx, name)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(name, data)
	if r.watcher != nil {
		if err := r.watcher.Add(name); err != nil {
			r.logger.Warnf("failed to watch %s: %v", name, err)
		}
	}
	r.logger.Debugf("Added %s (%s). Cache now has %d entries.", name, humanize.Bytes(uint64(len(data))), r.cache.ItemCount())
	return data, nil
}

// Stats returns the number of cache hits and misses.
func (r *CachingReader) Stats() (hits, misses int64) {
	return r.hits.Load(), r.misses.Load()
}

// Close stops watching files and evicting entries.
func (r *CachingReader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.closing)
		if r.watcher != nil {
			err = r.watcher.Close()
		}
		<-r.done
	})
	return err
}

func (r *CachingReader) run(expiration time.Duration) {
	defer close(r.done)

	var events <-chan fsnotify.Event
	var errs <-chan error
	if r.watcher != nil {
		events, errs = r.watcher.Events, r.watcher.Errors
	}
	var tick <-chan time.Time
	if expiration > 0 {
		ticker := time.NewTicker(expiration)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-r.closing:
			return
		case <-tick:
			r.cache.DeleteExpired()
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				r.cache.Delete(event.Name)
				r.logger.Debugf("Invalidated %s", event.Name)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			r.logger.Warnf("file watcher error: %v", err)
		}
	}
}
