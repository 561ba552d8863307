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
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/elastic/elastic-agent-libs/logp"

	"github.com/elastic/apm-stackpage/internal/config"
	"github.com/elastic/apm-stackpage/internal/logs"
	"github.com/elastic/apm-stackpage/internal/server"
	"github.com/elastic/apm-stackpage/internal/version"
)

// Name of this binary.
const Name = "apm-stackpage"

// RootCmd for running apm-stackpage.
// This is the command that is used if no other command is specified.
// Running `apm-stackpage run` or `apm-stackpage` is identical.
var RootCmd = NewRootCmd()

type runSettings struct {
	configFile string
	overrides  []string
}

// NewRootCmd returns the root command with the run and version subcommands.
func NewRootCmd() *cobra.Command {
	var settings runSettings
	runFlags := pflag.NewFlagSet(Name, pflag.ExitOnError)
	runFlags.StringVarP(&settings.configFile, "config", "c", config.DefaultFile, "Configuration file")
	runFlags.StringArrayVarP(&settings.overrides, "setting", "E", nil, "Configuration overwrite, as key=value")

	runE := func(cmd *cobra.Command, _ []string) error {
		explicit := cmd.Flags().Changed("config")
		return runServer(cmd, config.ResolveFile(settings.configFile, explicit), settings.overrides)
	}
	root := &cobra.Command{
		Use:          Name,
		Short:        "Serves a page listing the stack frames of a sample error",
		SilenceUsage: true,
		RunE:         runE,
	}
	root.PersistentFlags().AddFlagSet(runFlags)
	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run " + Name,
			RunE:  runE,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show current version info",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (commit %s, built %s)\n",
					Name, version.Version, version.Commit(), version.BuildTime())
			},
		},
	)
	return root
}

func runServer(cmd *cobra.Command, configFile string, overrides []string) error {
	cfg, err := config.Load(configFile, overrides)
	if err != nil {
		return err
	}
	if err := configureLogging(cfg.Logging); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg, logp.NewLogger(logs.Server))
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func configureLogging(cfg config.LoggingConfig) error {
	logCfg := logp.DefaultConfig(logp.DefaultEnvironment)
	logCfg.Beat = Name
	logCfg.Level = cfg.Level
	logCfg.Selectors = cfg.Selectors
	logCfg.ToStderr = true
	logCfg.ToFiles = false
	return logp.Configure(logCfg)
}
