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
	"net/http"

	"github.com/pkg/errors"
)

// ResultID names the outcome of a request. IDs double as monitoring
// counter names.
type ResultID string

// Counters maintained for every request, independent of its outcome.
const (
	IDRequestCount        ResultID = "request.count"
	IDResponseCount       ResultID = "response.count"
	IDResponseErrorsCount ResultID = "response.errors.count"
	IDResponseValidCount  ResultID = "response.valid.count"
)

// Request outcomes.
const (
	// IDUnset is the ID of a freshly reset Result.
	IDUnset ResultID = "unset"

	IDResponseValidOK ResultID = "response.valid.ok"
	// IDResponseValidErrorPage is set when the frames of an error were listed.
	IDResponseValidErrorPage ResultID = "response.valid.errorpage"
	// IDResponseValidRawStacktrace is set when the error page could not be
	// built and the raw stack trace was sent instead.
	IDResponseValidRawStacktrace ResultID = "response.valid.rawstacktrace"

	IDResponseErrorsRateLimit ResultID = "response.errors.ratelimit"
	IDResponseErrorsInternal  ResultID = "response.errors.internal"
)

// Status is the HTTP status code and log keyword of an outcome.
type Status struct {
	Code    int
	Keyword string
}

// MapResultIDToStatus holds the Status of every outcome ID.
var MapResultIDToStatus = map[ResultID]Status{
	IDResponseValidOK:            {Code: http.StatusOK, Keyword: "request ok"},
	IDResponseValidErrorPage:     {Code: http.StatusOK, Keyword: "error page rendered"},
	IDResponseValidRawStacktrace: {Code: http.StatusOK, Keyword: "raw stack trace rendered"},
	IDResponseErrorsRateLimit:    {Code: http.StatusTooManyRequests, Keyword: "too many requests"},
	IDResponseErrorsInternal:     {Code: http.StatusInternalServerError, Keyword: "internal error"},
}

// StatusOf returns the Status of id. Unknown IDs are reported as
// internal errors.
func StatusOf(id ResultID) Status {
	if status, ok := MapResultIDToStatus[id]; ok {
		return status
	}
	return MapResultIDToStatus[IDResponseErrorsInternal]
}

// Result is what a handler decided to answer. Middlewares log, count and
// write it after the handler returns.
type Result struct {
	ID         ResultID
	StatusCode int
	Keyword    string
	Body       interface{}
	Err        error

	// Stacktrace is the stack of a recovered panic.
	Stacktrace string
}

// Reset clears r for reuse by the next request.
func (r *Result) Reset() {
	*r = Result{ID: IDUnset, StatusCode: http.StatusOK}
}

// Failure reports whether the status code is 4xx or 5xx.
func (r *Result) Failure() bool {
	return r.StatusCode >= http.StatusBadRequest
}

// SetDefault sets the outcome id with its status code and keyword.
func (r *Result) SetDefault(id ResultID) {
	r.set(id, nil, nil)
}

// SetWithError is SetDefault recording err as the cause.
func (r *Result) SetWithError(id ResultID, err error) {
	r.set(id, nil, err)
}

// SetWithBody is SetDefault with body as the response body.
func (r *Result) SetWithBody(id ResultID, body interface{}) {
	r.set(id, body, nil)
}

// Set sets all fields but Stacktrace. For failures, a missing err is
// created from keyword and a missing body is taken from the error message.
func (r *Result) Set(id ResultID, statusCode int, keyword string, body interface{}, err error) {
	if r == nil {
		return
	}
	r.ID, r.StatusCode, r.Keyword = id, statusCode, keyword
	r.Body, r.Err = body, err
	if !r.Failure() {
		return
	}
	if r.Err == nil {
		r.Err = errors.New(keyword)
	}
	if r.Body == nil {
		r.Body = r.Err.Error()
	}
}

func (r *Result) set(id ResultID, body interface{}, err error) {
	status := StatusOf(id)
	r.Set(id, status.Code, status.Keyword, body, err)
}
