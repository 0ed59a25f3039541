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

package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Defaults for the fuzzy-match TODO annotation and friends, matching the
// flag defaults.
const (
	DefaultTodoComment = " TODO: This license is not consistent with the license used in the project."
	DefaultTodoInstructions = "       Delete the inconsistent license and above line" +
		" and rerun the tool to insert a good license."
	DefaultSkipComment = "SKIP LICENSE INSERTION"

	DefaultTopLines        = 5
	DefaultFuzzyCutoff     = 85
	DefaultFuzzyExtraLines = 3
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config represents the complete run configuration
type Config struct {
	LicenseFilepath string `json:"license_filepath" yaml:"license_filepath" hcl:"license_filepath,optional"`
	LicenseBase64   string `json:"license_base64,omitempty" yaml:"license_base64,omitempty" hcl:"license_base64,optional"`

	CommentStyle    string `json:"comment_style" yaml:"comment_style" hcl:"comment_style,optional"`
	NoSpaceInPrefix bool   `json:"no_space_in_comment_prefix,omitempty" yaml:"no_space_in_comment_prefix,omitempty" hcl:"no_space_in_comment_prefix,optional"`
	NoExtraEOL      bool   `json:"no_extra_eol,omitempty" yaml:"no_extra_eol,omitempty" hcl:"no_extra_eol,optional"`

	TopLines int `json:"detect_license_in_top_lines" yaml:"detect_license_in_top_lines" hcl:"detect_license_in_top_lines,optional"`

	FuzzyMatchGeneratesTodo bool   `json:"fuzzy_match_generates_todo,omitempty" yaml:"fuzzy_match_generates_todo,omitempty" hcl:"fuzzy_match_generates_todo,optional"`
	FuzzyRatioCutoff        int    `json:"fuzzy_ratio_cut_off" yaml:"fuzzy_ratio_cut_off" hcl:"fuzzy_ratio_cut_off,optional"`
	FuzzyTodoComment        string `json:"fuzzy_match_todo_comment" yaml:"fuzzy_match_todo_comment" hcl:"fuzzy_match_todo_comment,optional"`
	FuzzyTodoInstructions   string `json:"fuzzy_match_todo_instructions" yaml:"fuzzy_match_todo_instructions" hcl:"fuzzy_match_todo_instructions,optional"`
	FuzzyExtraLines         int    `json:"fuzzy_match_extra_lines_to_check" yaml:"fuzzy_match_extra_lines_to_check" hcl:"fuzzy_match_extra_lines_to_check,optional"`

	SkipComment      string `json:"skip_license_insertion_comment" yaml:"skip_license_insertion_comment" hcl:"skip_license_insertion_comment,optional"`
	InsertAfterRegex string `json:"insert_license_after_regex,omitempty" yaml:"insert_license_after_regex,omitempty" hcl:"insert_license_after_regex,optional"`

	RemoveHeader   bool `json:"remove_header,omitempty" yaml:"remove_header,omitempty" hcl:"remove_header,optional"`
	UseCurrentYear bool `json:"use_current_year,omitempty" yaml:"use_current_year,omitempty" hcl:"use_current_year,optional"`
	AllowPastYears bool `json:"allow_past_years,omitempty" yaml:"allow_past_years,omitempty" hcl:"allow_past_years,optional"`
	DynamicYears   bool `json:"dynamic_years,omitempty" yaml:"dynamic_years,omitempty" hcl:"dynamic_years,optional"`

	// Include/Exclude filter the positional file arguments with doublestar
	// glob patterns before processing.
	Include []string `json:"include,omitempty" yaml:"include,omitempty" hcl:"include,optional"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
}

// 🏭 Default returns a config with the stock flag defaults applied
func Default() *Config {
	return &Config{
		LicenseFilepath:       "LICENSE.txt",
		CommentStyle:          "#",
		TopLines:              DefaultTopLines,
		FuzzyRatioCutoff:      DefaultFuzzyCutoff,
		FuzzyTodoComment:      DefaultTodoComment,
		FuzzyTodoInstructions: DefaultTodoInstructions,
		FuzzyExtraLines:       DefaultFuzzyExtraLines,
		SkipComment:           DefaultSkipComment,
	}
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills unset values with defaults
func (cfg *Config) Validate() error {
	def := Default()
	if cfg.LicenseFilepath == "" {
		cfg.LicenseFilepath = def.LicenseFilepath
	}
	if cfg.CommentStyle == "" {
		cfg.CommentStyle = def.CommentStyle
	}
	if cfg.TopLines == 0 {
		cfg.TopLines = def.TopLines
	}
	if cfg.FuzzyRatioCutoff == 0 {
		cfg.FuzzyRatioCutoff = def.FuzzyRatioCutoff
	}
	if cfg.FuzzyTodoComment == "" {
		cfg.FuzzyTodoComment = def.FuzzyTodoComment
	}
	if cfg.FuzzyTodoInstructions == "" {
		cfg.FuzzyTodoInstructions = def.FuzzyTodoInstructions
	}
	if cfg.FuzzyExtraLines == 0 {
		cfg.FuzzyExtraLines = def.FuzzyExtraLines
	}
	if cfg.SkipComment == "" {
		cfg.SkipComment = def.SkipComment
	}

	if cfg.TopLines < 1 {
		return errors.Errorf("detect_license_in_top_lines must be positive, got %d", cfg.TopLines)
	}
	if cfg.FuzzyRatioCutoff < 0 || cfg.FuzzyRatioCutoff > 100 {
		return errors.Errorf("fuzzy_ratio_cut_off must be in [0, 100], got %d", cfg.FuzzyRatioCutoff)
	}

	// both year modes imply lenient year matching
	if cfg.UseCurrentYear || cfg.DynamicYears {
		cfg.AllowPastYears = true
	}

	return nil
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &cfg, nil
}
