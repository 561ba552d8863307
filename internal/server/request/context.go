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

package request

import (
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/elastic/elastic-agent-libs/logp"

	"github.com/elastic/apm-stackpage/internal/logs"
	"github.com/elastic/apm-stackpage/internal/server/headers"
)

const (
	mimeTypeAny             = "*/*"
	mimeTypeApplicationJSON = "application/json"
	mimeTypeTextPlain       = "text/plain; charset=utf-8"
)

var (
	mimeTypesJSON = []string{mimeTypeAny, mimeTypeApplicationJSON}
	json          = jsoniter.ConfigCompatibleWithStandardLibrary
)

// Handler is a function type describing how to handle a request.
type Handler func(*Context)

// Context abstracts request and response information for http requests
type Context struct {
	Request        *http.Request
	ResponseWriter http.ResponseWriter
	Logger         *logp.Logger
	Result         Result

	// ClientIP holds the IP address of the peer that sent the request.
	ClientIP netip.Addr

	// Timestamp holds the time at which the request was received.
	Timestamp time.Time

	writeAttempts int
}

// Reset allows to reuse a context by removing all request specific information.
func (c *Context) Reset(w http.ResponseWriter, r *http.Request) {
	c.Request = r
	c.ResponseWriter = w
	c.Logger = nil
	c.Result.Reset()
	c.ClientIP = netip.Addr{}
	c.Timestamp = time.Now()
	c.writeAttempts = 0

	if r != nil {
		c.ClientIP = remoteIP(r.RemoteAddr)
	}
}

// WriteResult sets response headers, and writes the body to the response writer.
// In case body is nil only the headers will be set.
// In case statusCode indicates an error response, the body is also set as error in the context.
// Only first call will write to the response writer.
func (c *Context) WriteResult() {
	if !c.beginWrite() {
		return
	}
	c.ResponseWriter.Header().Set(headers.XContentTypeOptions, "nosniff")

	body := c.Result.Body
	if body == nil {
		c.ResponseWriter.WriteHeader(c.Result.StatusCode)
		return
	}

	if s, ok := body.(string); ok && c.Result.Failure() {
		body = map[string]string{"error": s}
	}

	var err error
	if c.acceptJSON() {
		err = c.writeJSON(body)
	} else {
		err = c.writePlain(body)
	}
	if err != nil {
		c.errorLogger().Errorw("write response", "error", err)
	}
}

// WriteBody writes body verbatim using the given content type and the status code of the context's Result.
// Only first call will write to the response writer.
func (c *Context) WriteBody(contentType string, body []byte) {
	if !c.beginWrite() {
		return
	}
	h := c.ResponseWriter.Header()
	h.Set(headers.ContentType, contentType)
	h.Set(headers.ContentLength, strconv.Itoa(len(body)))
	h.Set(headers.XContentTypeOptions, "nosniff")
	c.ResponseWriter.WriteHeader(c.Result.StatusCode)
	if c.Request != nil && c.Request.Method == http.MethodHead {
		return
	}
	if _, err := c.ResponseWriter.Write(body); err != nil {
		c.errorLogger().Errorw("write response", "error", err)
	}
}

// MultipleWriteAttempts returns a boolean set to true if Write() was called multiple times.
func (c *Context) MultipleWriteAttempts() bool {
	return c.writeAttempts > 1
}

func (c *Context) beginWrite() bool {
	c.writeAttempts++
	return c.writeAttempts == 1
}

func (c *Context) writeJSON(body interface{}) error {
	c.ResponseWriter.Header().Set(headers.ContentType, mimeTypeApplicationJSON)
	c.ResponseWriter.WriteHeader(c.Result.StatusCode)
	enc := json.NewEncoder(c.ResponseWriter)
	enc.SetIndent("", "  ")
	return enc.Encode(body)
}

func (c *Context) writePlain(body interface{}) error {
	c.ResponseWriter.Header().Set(headers.ContentType, mimeTypeTextPlain)
	c.ResponseWriter.WriteHeader(c.Result.StatusCode)
	if s, ok := body.(string); ok {
		_, err := c.ResponseWriter.Write([]byte(s + "\n"))
		return err
	}
	// json.Encoder appends a newline
	return json.NewEncoder(c.ResponseWriter).Encode(body)
}

func (c *Context) acceptJSON() bool {
	if c.Request == nil {
		return false
	}
	acceptHeader := c.Request.Header.Get(headers.Accept)
	for _, s := range mimeTypesJSON {
		if strings.Contains(acceptHeader, s) {
			return true
		}
	}
	return false
}

func (c *Context) errorLogger() *logp.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logp.NewLogger(logs.Response)
}

func remoteIP(remoteAddr string) netip.Addr {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}
