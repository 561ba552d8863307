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

//go:build mage

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/elastic/apm-stackpage/internal/version"
)

const binary = "apm-stackpage"

var Default = Build

func ldflags() (string, error) {
	commit, err := sh.Output("git", "rev-parse", "HEAD")
	if err != nil {
		commit = "unknown"
	}
	pkg := "github.com/elastic/apm-stackpage/internal/version"
	return strings.Join([]string{
		"-s",
		fmt.Sprintf("-X %s.commit=%s", pkg, commit),
		fmt.Sprintf("-X %s.buildTime=%s", pkg, time.Now().UTC().Format(time.RFC3339)),
	}, " "), nil
}

// Build builds the apm-stackpage binary.
func Build() error {
	flags, err := ldflags()
	if err != nil {
		return err
	}
	fmt.Printf(">> build: %s %s\n", binary, version.Version)
	return sh.RunV("go", "build", "-o", binary, "-ldflags", flags, ".")
}

// Check runs go vet and verifies license headers.
func Check() error {
	mg.Deps(CheckHeaders)
	return sh.RunV("go", "vet", "./...")
}

// CheckHeaders fails if any Go source file is missing the license header.
func CheckHeaders() error {
	return sh.RunV("go", "run", "github.com/elastic/go-licenser", "-d", "-exclude", "_examples")
}

// Test runs the unit tests through gotestsum.
func Test() error {
	env := map[string]string{}
	if os.Getenv("CI") != "" {
		env["GOTESTSUM_JUNITFILE"] = "build/TEST-go-unit.xml"
	}
	return sh.RunWithV(env, "go", "run", "gotest.tools/gotestsum", "--format", "testname", "--", "-race", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm(binary)
}
