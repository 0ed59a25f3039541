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

// Package match locates an existing license header in the leading lines of a
// source file, first by exact line comparison and then, on demand, by
// approximate text similarity.
package match

import (
	"strings"

	"github.com/walteh/licenserc/pkg/license"
	"github.com/walteh/licenserc/pkg/years"
)

// lineMatches compares a framed template line against a source line. Strict
// mode requires the year text to match too; lenient mode compares with all
// year tokens stripped.
func lineMatches(templateLine, srcLine string, strictYears bool) bool {
	templateLine = strings.TrimSpace(templateLine)
	srcLine = strings.TrimSpace(srcLine)

	if strictYears {
		return templateLine == srcLine
	}
	return years.StripYears(templateLine) == years.StripYears(srcLine)
}

// Exact scans the first topLines offsets of src for a verbatim run of the
// framed template and returns the lowest matching offset. The earliest offset
// wins so headers sit as close to the top as permitted preambles allow.
func Exact(src []string, tmpl license.Template, topLines int, strictYears bool) (int, bool) {
	for i := 0; i < topLines; i++ {
		matched := true
		for j, templateLine := range tmpl.Framed {
			if i+j >= len(src) || !lineMatches(templateLine, src[i+j], strictYears) {
				matched = false
				break
			}
		}
		if matched {
			return i, true
		}
	}
	return 0, false
}
