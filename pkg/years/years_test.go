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

package years

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateYear(t *testing.T) {
	tests := []struct {
		name           string
		line           string
		targetYear     int
		introduceRange bool
		want           string
		wantChanged    bool
	}{
		{
			name:           "stale_range_is_extended",
			line:           "# Copyright 2017-2019 ACME\n",
			targetYear:     2024,
			introduceRange: true,
			want:           "# Copyright 2017-2024 ACME\n",
			wantChanged:    true,
		},
		{
			name:           "bare_year_becomes_range",
			line:           "# Copyright 2017 ACME\n",
			targetYear:     2024,
			introduceRange: true,
			want:           "# Copyright 2017-2024 ACME\n",
			wantChanged:    true,
		},
		{
			name:           "bare_year_replaced_without_range",
			line:           "# Copyright 2017 ACME\n",
			targetYear:     2024,
			introduceRange: false,
			want:           "# Copyright 2024 ACME\n",
			wantChanged:    true,
		},
		{
			name:           "range_with_spaces_around_dash",
			line:           "# Copyright 2017 - 2019 ACME\n",
			targetYear:     2024,
			introduceRange: true,
			want:           "# Copyright 2017-2024 ACME\n",
			wantChanged:    true,
		},
		{
			name:           "current_range_untouched",
			line:           "# Copyright 2017-2024 ACME\n",
			targetYear:     2024,
			introduceRange: true,
			wantChanged:    false,
		},
		{
			name:           "current_bare_year_untouched",
			line:           "# Copyright 2024 ACME\n",
			targetYear:     2024,
			introduceRange: true,
			wantChanged:    false,
		},
		{
			name:           "future_end_year_untouched",
			line:           "# Copyright 2017-2030 ACME\n",
			targetYear:     2024,
			introduceRange: true,
			wantChanged:    false,
		},
		{
			name:           "no_year_in_line",
			line:           "# All rights reserved.\n",
			targetYear:     2024,
			introduceRange: true,
			wantChanged:    false,
		},
		{
			name:           "last_token_wins",
			line:           "# 2001 movie, Copyright 2017 ACME\n",
			targetYear:     2024,
			introduceRange: true,
			want:           "# 2001 movie, Copyright 2017-2024 ACME\n",
			wantChanged:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed, err := UpdateYear(tt.line, tt.targetYear, tt.introduceRange)
			require.NoError(t, err, "update should not fail")
			assert.Equal(t, tt.wantChanged, changed, "changed flag should match")
			if tt.wantChanged {
				assert.Equal(t, tt.want, got, "updated line should match")
			}
		})
	}
}

func TestUpdateYearIsIdempotent(t *testing.T) {
	line := "// Copyright 2015 Example Corp\n"

	updated, changed, err := UpdateYear(line, 2024, true)
	require.NoError(t, err)
	require.True(t, changed, "first run should rewrite the year")
	assert.Equal(t, "// Copyright 2015-2024 Example Corp\n", updated, "range should end in the target year")

	_, changed, err = UpdateYear(updated, 2024, true)
	require.NoError(t, err)
	assert.False(t, changed, "second run should be a no-op")
}

func TestStripYears(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "single_year",
			line: "# Copyright 2017 ACME",
			want: "# Copyright  ACME",
		},
		{
			name: "year_range",
			line: "# Copyright 2017-2019 ACME",
			want: "# Copyright  ACME",
		},
		{
			name: "year_list",
			line: "# Copyright 2017, 2019, 2021 ACME",
			want: "# Copyright  ACME",
		},
		{
			name: "no_years",
			line: "# All rights reserved",
			want: "# All rights reserved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripYears(tt.line), "stripped line should match")
		})
	}
}

func TestFirstRange(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  *Range
	}{
		{
			name:  "closed_range",
			lines: []string{"# Copyright 2017-2019 ACME\n", "import sys\n"},
			want:  &Range{Start: 2017, End: 2019},
		},
		{
			name:  "open_range_gets_placeholder",
			lines: []string{"# Copyright 2017 ACME\n"},
			want:  &Range{Start: 2017, End: PlaceholderEnd},
		},
		{
			name:  "first_line_with_year_wins",
			lines: []string{"import sys\n", "# Copyright 2011-2015 ACME\n", "# Copyright 2020 other\n"},
			want:  &Range{Start: 2011, End: 2015},
		},
		{
			name:  "no_year_anywhere",
			lines: []string{"import sys\n", "print('hi')\n"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstRange(tt.lines), "range should match")
		})
	}
}

func TestResolveEndYear(t *testing.T) {
	tests := []struct {
		name        string
		existing    *Range
		historyEnd  int
		currentYear int
		want        int
	}{
		{
			name:        "history_wins_by_default",
			existing:    nil,
			historyEnd:  2023,
			currentYear: 2024,
			want:        2023,
		},
		{
			name:        "stale_history_would_thrash_so_use_current",
			existing:    &Range{Start: 2020, End: 2022},
			historyEnd:  2023,
			currentYear: 2024,
			want:        2024,
		},
		{
			name:        "history_older_than_file_does_not_regress",
			existing:    &Range{Start: 2020, End: 2023},
			historyEnd:  2022,
			currentYear: 2024,
			want:        2022,
		},
		{
			// boundary: history already at the wall clock, no thrash possible
			name:        "history_end_equals_current_year",
			existing:    &Range{Start: 2020, End: 2022},
			historyEnd:  2024,
			currentYear: 2024,
			want:        2024,
		},
		{
			// boundary: file already agrees with history
			name:        "existing_end_equals_history_end",
			existing:    &Range{Start: 2020, End: 2023},
			historyEnd:  2023,
			currentYear: 2024,
			want:        2023,
		},
		{
			name:        "placeholder_history_is_preferred",
			existing:    &Range{Start: 2020, End: 2022},
			historyEnd:  PlaceholderEnd,
			currentYear: 2024,
			want:        PlaceholderEnd,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveEndYear(tt.existing, tt.historyEnd, tt.currentYear)
			assert.Equal(t, tt.want, got, "resolved end year should match")
		})
	}
}

func TestResolvePlaceholder(t *testing.T) {
	assert.Equal(t,
		"# Copyright 2020-2024 ACME\n",
		ResolvePlaceholder("# Copyright 2020-1000 ACME\n", 2024),
		"placeholder end year should be replaced")

	assert.Equal(t,
		"# Copyright 2020-2023 ACME\n",
		ResolvePlaceholder("# Copyright 2020-2023 ACME\n", 2024),
		"resolved ranges should be left alone")
}
