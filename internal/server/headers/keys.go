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

package headers

// Keys of HTTP headers set or read by the server.
const (
	Accept              = "Accept"
	ContentLength       = "Content-Length"
	ContentType         = "Content-Type"
	UserAgent           = "User-Agent"
	XContentTypeOptions = "X-Content-Type-Options"
	RetryAfter          = "Retry-After"
)
