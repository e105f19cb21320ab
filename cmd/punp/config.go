// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/haukzero/punp/internal/filefinder"
	"github.com/haukzero/punp/internal/projectconfig"
	"github.com/haukzero/punp/internal/report"
	"github.com/haukzero/punp/internal/ruleconfig"
	"github.com/haukzero/punp/pkg/matcher"
	"github.com/haukzero/punp/pkg/processor"
)

// newRunCmd builds the "run" subcommand: the whole punp pipeline from
// project config through to a printed summary and process exit code.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "rewrite the configured input files in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd)
		},
	}
}

func runBatch(cmd *cobra.Command) error {
	ctx := cmd.Context()
	logger := newLogger()
	rep := report.New(os.Stdout)
	rep.Header("running")

	cfg, err := projectconfig.Load(ctx, configFile)
	if err != nil {
		return errors.Errorf("loading project config %s: %w", configFile, err)
	}

	rulePath := cfg.RuleFile
	if ruleFile != "" {
		rulePath = ruleFile
	}
	ruleSource, err := os.ReadFile(rulePath)
	if err != nil {
		return errors.Errorf("reading rule file %s: %w", rulePath, err)
	}
	replacements, protectedRegions, err := ruleconfig.Parse(string(ruleSource))
	if err != nil {
		return errors.Errorf("parsing rule file %s: %w", rulePath, err)
	}

	files, err := filefinder.Find(filefinder.Config{
		Patterns:    cfg.Inputs,
		Extensions:  cfg.Extensions,
		Exclude:     cfg.Exclude,
		Recursive:   cfg.Recursive,
		RuleFile:    rulePath,
		FollowLatex: cfg.FollowTex,
	})
	if err != nil {
		return errors.Errorf("discovering input files: %w", err)
	}
	if len(files) == 0 {
		logger.Warn().Msg("no input files matched the configured patterns")
		return nil
	}

	m := matcher.Build(replacements)
	proc := processor.New(processor.Options{
		Matcher:   m,
		Protected: protectedRegions,
		PageSize:  cfg.PageSize,
		Logger:    &logger,
	})
	defer proc.Close()

	results := proc.Process(ctx, files, cfg.MaxThreads)

	for _, res := range results {
		rep.FileResult(ctx, res)
	}
	_, _, failed, _ := rep.Summary(results)

	if failed > 0 {
		return errors.Errorf("%d of %d files failed to process", failed, len(results))
	}
	return nil
}
