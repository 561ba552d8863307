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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestResult_Reset(t *testing.T) {
	r := Result{
		ID:         IDResponseErrorsInternal,
		StatusCode: http.StatusInternalServerError,
		Keyword:    "internal error",
		Body:       "boom",
		Err:        errors.New("boom"),
		Stacktrace: "goroutine 1",
	}
	r.Reset()
	assertResultIsEmpty(t, r)
}

func TestResult_Failure(t *testing.T) {
	assert.False(t, (&Result{StatusCode: http.StatusOK}).Failure())
	assert.False(t, (&Result{StatusCode: http.StatusNotModified}).Failure())
	assert.True(t, (&Result{StatusCode: http.StatusTooManyRequests}).Failure())
	assert.True(t, (&Result{StatusCode: http.StatusInternalServerError}).Failure())
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, Status{Code: http.StatusOK, Keyword: "raw stack trace rendered"}, StatusOf(IDResponseValidRawStacktrace))
	assert.Equal(t, http.StatusTooManyRequests, StatusOf(IDResponseErrorsRateLimit).Code)
	assert.Equal(t, StatusOf(IDResponseErrorsInternal), StatusOf("response.errors.unknown"))
}

func TestResult_Set(t *testing.T) {
	err := errors.New("sample error")
	for name, tc := range map[string]struct {
		set func(*Result)

		id         ResultID
		statusCode int
		keyword    string
		body       interface{}
		err        error
	}{
		"SetDefaultValid": {
			set:        func(r *Result) { r.SetDefault(IDResponseValidErrorPage) },
			id:         IDResponseValidErrorPage,
			statusCode: http.StatusOK,
			keyword:    "error page rendered",
		},
		"SetDefaultFailure": {
			set:        func(r *Result) { r.SetDefault(IDResponseErrorsRateLimit) },
			id:         IDResponseErrorsRateLimit,
			statusCode: http.StatusTooManyRequests,
			keyword:    "too many requests",
			body:       "too many requests",
			err:        errors.New("too many requests"),
		},
		"SetWithErrorValid": {
			set:        func(r *Result) { r.SetWithError(IDResponseValidRawStacktrace, err) },
			id:         IDResponseValidRawStacktrace,
			statusCode: http.StatusOK,
			keyword:    "raw stack trace rendered",
			err:        err,
		},
		"SetWithErrorFailure": {
			set:        func(r *Result) { r.SetWithError(IDResponseErrorsInternal, err) },
			id:         IDResponseErrorsInternal,
			statusCode: http.StatusInternalServerError,
			keyword:    "internal error",
			body:       "sample error",
			err:        err,
		},
		"SetWithBody": {
			set:        func(r *Result) { r.SetWithBody(IDResponseValidOK, "Hello World!") },
			id:         IDResponseValidOK,
			statusCode: http.StatusOK,
			keyword:    "request ok",
			body:       "Hello World!",
		},
		"UnknownID": {
			set:        func(r *Result) { r.SetDefault(ResultID("unknown")) },
			id:         ResultID("unknown"),
			statusCode: http.StatusInternalServerError,
			keyword:    "internal error",
			body:       "internal error",
			err:        errors.New("internal error"),
		},
	} {
		t.Run(name, func(t *testing.T) {
			var r Result
			r.Reset()
			tc.set(&r)
			assert.Equal(t, tc.id, r.ID)
			assert.Equal(t, tc.statusCode, r.StatusCode)
			assert.Equal(t, tc.keyword, r.Keyword)
			assert.Equal(t, tc.body, r.Body)
			if tc.err == nil {
				assert.NoError(t, r.Err)
			} else {
				assert.EqualError(t, r.Err, tc.err.Error())
			}
		})
	}
}

func assertResultIsEmpty(t *testing.T, r Result) {
	assert.Equal(t, IDUnset, r.ID)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	assert.Empty(t, r.Keyword)
	assert.Nil(t, r.Body)
	assert.NoError(t, r.Err)
	assert.Empty(t, r.Stacktrace)
}
