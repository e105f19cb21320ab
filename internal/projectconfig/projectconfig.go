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

// Package projectconfig loads the project-level ".punp.{yaml,hcl,json}"
// file that governs how a batch run is shaped: which files to touch, how
// many workers to run, and where the rule file lives.
package projectconfig

import (
	"context"

	"gitlab.com/tozd/go/errors"
)

// 📝 Config is the parsed project configuration.
type Config struct {
	Inputs     []string `json:"inputs" yaml:"inputs" hcl:"inputs,optional"`
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty" hcl:"extensions,optional"`
	Exclude    []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
	Recursive  bool     `json:"recursive,omitempty" yaml:"recursive,omitempty" hcl:"recursive,optional"`
	MaxThreads int      `json:"max_threads,omitempty" yaml:"max_threads,omitempty" hcl:"max_threads,optional"`
	PageSize   int      `json:"page_size,omitempty" yaml:"page_size,omitempty" hcl:"page_size,optional"`
	RuleFile   string   `json:"rule_file,omitempty" yaml:"rule_file,omitempty" hcl:"rule_file,optional"`
	FollowTex  bool     `json:"follow_latex_includes,omitempty" yaml:"follow_latex_includes,omitempty" hcl:"follow_latex_includes,optional"`

	location string
}

// Location returns the path this Config was loaded from.
func (c *Config) Location() string {
	return c.location
}

// 🔍 Validate rejects configurations that cannot drive a batch run.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return errors.New("config: at least one input pattern is required")
	}
	if c.MaxThreads < 0 {
		return errors.New("config: max_threads must be >= 0")
	}
	if c.PageSize < 0 {
		return errors.New("config: page_size must be >= 0")
	}
	if c.RuleFile == "" {
		c.RuleFile = ".punprules"
	}
	return nil
}

// 🔧 Parser is a format-specific decoder registered against a file
// extension. Mirrors the reference CLI's parser-registry pattern so
// adding a new project-config format never touches the loader.
type Parser interface {
	Parse(ctx context.Context, data []byte) (*Config, error)
	CanParse(filename string) bool
}

var parsers []Parser

// Register adds a Parser to the registry. Called from each format's
// init.
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🔍 GetParser returns the first registered parser willing to handle
// filename, or nil.
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}
