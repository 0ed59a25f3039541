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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "writing config fixture")
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "valid_yaml",
			filename: ".licenserc.yaml",
			config: `
license_filepath: COPYING
comment_style: "//"
detect_license_in_top_lines: 10
fuzzy_match_generates_todo: true
fuzzy_ratio_cut_off: 90
dynamic_years: true
include:
  - "**/*.go"
exclude:
  - "**/*_gen.go"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "COPYING", cfg.LicenseFilepath, "license filepath should match")
				assert.Equal(t, "//", cfg.CommentStyle, "comment style should match")
				assert.Equal(t, 10, cfg.TopLines, "top lines should match")
				assert.True(t, cfg.FuzzyMatchGeneratesTodo, "fuzzy todo should be enabled")
				assert.Equal(t, 90, cfg.FuzzyRatioCutoff, "cutoff should match")
				assert.True(t, cfg.DynamicYears, "dynamic years should be enabled")
				assert.True(t, cfg.AllowPastYears, "dynamic years implies allow past years")
				assert.Equal(t, []string{"**/*.go"}, cfg.Include, "include should match")
				assert.Equal(t, []string{"**/*_gen.go"}, cfg.Exclude, "exclude should match")
			},
		},
		{
			name:     "minimal_yaml_gets_defaults",
			filename: ".licenserc.yaml",
			config: `
license_filepath: LICENSE.txt
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "#", cfg.CommentStyle, "comment style should default")
				assert.Equal(t, DefaultTopLines, cfg.TopLines, "top lines should default")
				assert.Equal(t, DefaultFuzzyCutoff, cfg.FuzzyRatioCutoff, "cutoff should default")
				assert.Equal(t, DefaultSkipComment, cfg.SkipComment, "skip marker should default")
				assert.False(t, cfg.AllowPastYears, "lenient matching stays off by default")
			},
		},
		{
			name:     "valid_hcl",
			filename: ".licenserc.hcl",
			config: `
license_filepath = "COPYING"
comment_style    = "/*| *| */"
use_current_year = true
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "COPYING", cfg.LicenseFilepath, "license filepath should match")
				assert.Equal(t, "/*| *| */", cfg.CommentStyle, "comment style should match")
				assert.True(t, cfg.UseCurrentYear, "use current year should be set")
				assert.True(t, cfg.AllowPastYears, "use current year implies allow past years")
			},
		},
		{
			name:        "unknown_yaml_field",
			filename:    ".licenserc.yaml",
			config:      `no_such_option: true`,
			wantErr:     true,
			errContains: "parsing",
		},
		{
			name:        "invalid_cutoff",
			filename:    ".licenserc.yaml",
			config:      `fuzzy_ratio_cut_off: 200`,
			wantErr:     true,
			errContains: "fuzzy_ratio_cut_off",
		},
		{
			name:        "no_parser_for_extension",
			filename:    "licenserc.toml",
			config:      `x = 1`,
			wantErr:     true,
			errContains: "no parser",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.filename, tt.config)
			cfg, err := Load(context.Background(), path)
			if tt.wantErr {
				require.Error(t, err, "load should fail")
				assert.Contains(t, err.Error(), tt.errContains, "error should mention the cause")
				return
			}
			require.NoError(t, err, "load should succeed")
			tt.check(t, cfg)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate(), "defaults should validate")
	assert.Equal(t, "LICENSE.txt", cfg.LicenseFilepath, "default license path")
	assert.Equal(t, "#", cfg.CommentStyle, "default comment style")
	assert.Equal(t, DefaultTodoComment, cfg.FuzzyTodoComment, "default todo marker")
}

func TestValidateTopLines(t *testing.T) {
	cfg := Default()
	cfg.TopLines = -1
	require.Error(t, cfg.Validate(), "negative scan window should fail")
}
