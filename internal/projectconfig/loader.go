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

package projectconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

func init() {
	Register(yamlParser{})
	Register(hclParser{})
	Register(jsonParser{})
}

// 🏃 Load reads path, dispatches to the parser matching its extension (or,
// for the bare ".punprc"/".punp" name, tries YAML then HCL), and
// validates the result.
func Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading project config: %w", err)
	}

	base := filepath.Base(path)
	var cfg *Config

	if base == ".punprc" || base == ".punp" {
		if cfg, err = (yamlParser{}).Parse(ctx, data); err == nil {
			cfg.location = path
			return cfg, validate(cfg)
		}
		if cfg, err = (hclParser{}).Parse(ctx, data); err == nil {
			cfg.location = path
			return cfg, validate(cfg)
		}
		return nil, errors.Errorf("parsing %s as YAML or HCL: %w", base, err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no project config parser for %s", path)
	}
	cfg, err = p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing project config: %w", err)
	}
	cfg.location = path
	return cfg, validate(cfg)
}

func validate(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating project config: %w", err)
	}
	return nil
}

type yamlParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (yamlParser) CanParse(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}

func (yamlParser) Parse(_ context.Context, data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

type jsonParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (jsonParser) CanParse(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".json"
}

func (jsonParser) Parse(_ context.Context, data []byte) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &cfg, nil
}

type hclParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (hclParser) CanParse(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".hcl"
}

func (hclParser) Parse(_ context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(data, "project-config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{}}
	var cfg Config
	if diags = gohcl.DecodeBody(f.Body, evalCtx, &cfg); diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}
	return &cfg, nil
}
