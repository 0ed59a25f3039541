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

package operation

import (
	"regexp"
	"strings"

	"github.com/walteh/licenserc/pkg/license"
	"github.com/walteh/licenserc/pkg/srcfile"
	"github.com/walteh/licenserc/pkg/years"
	"gitlab.com/tozd/go/errors"
)

// insertIndex picks where the header block goes. A configured insert-after
// pattern wins: the block lands right after the first matching line (or at
// the top when nothing matches). Otherwise leading shebang lines, encoding
// declarations and blanks are skipped.
func insertIndex(lines []string, after *regexp.Regexp) int {
	if after != nil {
		for i, line := range lines {
			if after.MatchString(strings.TrimSpace(line)) {
				return i + 1
			}
		}
		return 0
	}

	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "#!") ||
			strings.HasPrefix(stripped, "# -*- coding") ||
			stripped == "" {
			continue
		}
		return i
	}
	return len(lines)
}

// insertHeader splices the framed block (plus its separator line) into the
// file and persists it.
func insertHeader(file *srcfile.File, tmpl license.Template, after *regexp.Regexp) error {
	index := insertIndex(file.Lines, after)

	block := make([]string, 0, len(tmpl.Framed)+1)
	block = append(block, tmpl.Framed...)
	if tmpl.EOL != "" {
		block = append(block, tmpl.EOL)
	}

	updated := make([]string, 0, len(file.Lines)+len(block))
	updated = append(updated, file.Lines[:index]...)
	updated = append(updated, block...)
	updated = append(updated, file.Lines[index:]...)

	file.Lines = updated
	return file.Write()
}

// removeHeader deletes the matched span, plus the one blank separator line
// that follows it when present.
func removeHeader(file *srcfile.File, tmpl license.Template, headerIndex int) error {
	end := headerIndex + len(tmpl.Framed)
	if end >= len(file.Lines) || strings.TrimSpace(file.Lines[end]) == "" {
		end++
	}
	if end > len(file.Lines) {
		end = len(file.Lines)
	}

	file.Lines = append(file.Lines[:headerIndex:headerIndex], file.Lines[end:]...)
	return file.Write()
}

// updateYearRange rewrites the first line within the matched span that
// carries a year token so its range ends in targetYear. Returns false when
// no line needed a change; the file is only written on change.
func updateYearRange(file *srcfile.File, headerIndex, headerLen, targetYear int) (bool, error) {
	for i := headerIndex; i < headerIndex+headerLen && i < len(file.Lines); i++ {
		updated, ok, err := years.UpdateYear(file.Lines[i], targetYear, true)
		if err != nil {
			return false, errors.Errorf("%s: %w", file.Path, err)
		}
		if ok {
			file.Lines[i] = updated
			if err := file.Write(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// annotateInconsistent inserts the marker comment and its instruction line
// directly above a fuzzy-matched header.
func annotateInconsistent(file *srcfile.File, tmpl license.Template, fuzzyIndex int, comment, instructions string) error {
	marker := []string{
		tmpl.Style.Prefix + comment + tmpl.Terminator,
		tmpl.Style.Prefix + instructions + tmpl.Terminator,
	}

	updated := make([]string, 0, len(file.Lines)+2)
	updated = append(updated, file.Lines[:fuzzyIndex]...)
	updated = append(updated, marker...)
	updated = append(updated, file.Lines[fuzzyIndex:]...)

	file.Lines = updated
	return file.Write()
}
