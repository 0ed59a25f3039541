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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// PlaceholderEnd stands in for "end year unknown yet" in dynamic-year
// templates until commit history resolves it.
const PlaceholderEnd = 1000

// ErrUpdateFailed is returned when a year range was detected in a license
// header but rewriting it could not be verified to end in the target year.
var ErrUpdateFailed = errors.Base("year range detected in license header, but unable to update it")

var (
	// a year, then optionally a dash (with optional spaces around it) and a
	// second 2-4 digit year, bounded by word edges
	rangePattern = regexp.MustCompile(`\b\d{4}( *- *\d{2,4})?\b`)

	// looser than rangePattern: matches any run of year-looking numbers
	// separated by commas, dashes or spaces
	allYearsPattern = regexp.MustCompile(`\b\d{4}([ ,-]+\d{2,4})*\b`)

	placeholderPattern = regexp.MustCompile(`(\d+)-` + strconv.Itoa(PlaceholderEnd) + `\b`)
)

// Range is a copyright year span. A single year is Start == End.
type Range struct {
	Start int
	End   int
}

func (r Range) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// StripYears removes every year-looking token from line, for year-insensitive
// line comparison.
func StripYears(line string) string {
	return allYearsPattern.ReplaceAllString(line, "")
}

// splitRangeToken takes a rangePattern match and returns the start year plus
// the end-year text (empty for a bare year).
func splitRangeToken(token string) (int, string) {
	start, _ := strconv.Atoi(token[:4])
	end := ""
	if len(token) > 4 {
		end = strings.TrimLeft(token[4:], " -,")
	}
	return start, end
}

// UpdateYear rewrites the last year-range token in line so it ends in
// targetYear. A bare year becomes a range when introduceRange is set,
// otherwise it is replaced in place. The second return is false when the line
// needed no change (no token, or the token already reaches targetYear).
func UpdateYear(line string, targetYear int, introduceRange bool) (string, bool, error) {
	matches := rangePattern.FindAllString(line, -1)
	if len(matches) == 0 {
		return "", false, nil
	}
	token := matches[len(matches)-1]
	start, endText := splitRangeToken(token)

	if endText != "" {
		end, err := strconv.Atoi(endText)
		if err == nil && end < targetYear {
			return rewriteRange(line, token, start, targetYear)
		}
		return "", false, nil
	}
	if start < targetYear {
		if introduceRange {
			return rewriteRange(line, token, start, targetYear)
		}
		return strings.ReplaceAll(line, token, strconv.Itoa(targetYear)), true, nil
	}
	return "", false, nil
}

// rewriteRange replaces token with "start-targetYear" and verifies the last
// year run on the resulting line actually ends in targetYear.
func rewriteRange(line, token string, start, targetYear int) (string, bool, error) {
	updated := strings.ReplaceAll(line, token, strconv.Itoa(start)+"-"+strconv.Itoa(targetYear))

	runs := allYearsPattern.FindAllString(updated, -1)
	want := strconv.Itoa(targetYear)
	if len(runs) == 0 || !strings.HasSuffix(runs[len(runs)-1], want) {
		return "", false, errors.Errorf("%w: input line %q, discarded result %q",
			ErrUpdateFailed, strings.TrimRight(line, "\r\n"), strings.TrimRight(updated, "\r\n"))
	}
	return updated, true, nil
}

// FirstRange scans lines for the first year-range token and returns it.
// An open-ended token (bare year) gets PlaceholderEnd as its end. Returns nil
// when no line carries a year.
func FirstRange(lines []string) *Range {
	for _, line := range lines {
		token := rangePattern.FindString(line)
		if token == "" {
			continue
		}
		start, endText := splitRangeToken(token)
		if endText != "" {
			end, err := strconv.Atoi(endText)
			if err == nil {
				return &Range{Start: start, End: end}
			}
		}
		return &Range{Start: start, End: PlaceholderEnd}
	}
	return nil
}

// ResolveEndYear picks the end year to template into a license before
// matching. Commit history wins by default. The one exception: when the file's
// own end year is older than the history's, and the history's is older than
// the wall clock, writing the history year would immediately go stale once
// this very edit is committed, so the wall-clock year is used instead.
// Both comparisons are strict on purpose; see the tests for the boundaries.
func ResolveEndYear(existing *Range, historyEnd, currentYear int) int {
	preferHistory := true
	if existing != nil && existing.End < historyEnd && historyEnd < currentYear {
		preferHistory = false
	}
	if preferHistory {
		return historyEnd
	}
	return currentYear
}

// ResolvePlaceholder replaces a "YYYY-<placeholder>" range on line with a
// range ending in currentYear.
func ResolvePlaceholder(line string, currentYear int) string {
	return placeholderPattern.ReplaceAllString(line, "${1}-"+strconv.Itoa(currentYear))
}
