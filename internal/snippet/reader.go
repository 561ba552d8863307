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
	"os"

	"go.elastic.co/apm"
)

// Reader reads the content of source files.
type Reader interface {
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// ReaderFunc is a function type that implements Reader.
type ReaderFunc func(ctx context.Context, name string) ([]byte, error)

// ReadFile calls f(ctx, name).
func (f ReaderFunc) ReadFile(ctx context.Context, name string) ([]byte, error) {
	return f(ctx, name)
}

// FileReader reads files from the local file system. Reads are recorded
// as spans when ctx carries a traced transaction.
type FileReader struct{}

// ReadFile reads the whole file name.
func (FileReader) ReadFile(ctx context.Context, name string) ([]byte, error) {
	span, _ := apm.StartSpan(ctx, "ReadFile", "app.file")
	defer span.End()
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return data, nil
}
