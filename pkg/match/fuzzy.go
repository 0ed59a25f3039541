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

package match

import (
	"strings"

	"github.com/walteh/licenserc/pkg/license"
)

// FuzzyOptions tunes the approximate header scan.
type FuzzyOptions struct {
	TopLines   int // scan offsets [0, TopLines)
	ExtraLines int // slack lines added to each candidate window
	Cutoff     int // minimum eligible ratio in [0, 100]
}

// Fuzzy looks for a near-match of the template in the leading lines of src.
// Each scan offset yields a candidate window whose comment-delimited span is
// flattened to one string and scored against the plain template text with
// TokenSetRatio. The best offset wins on ratio, with token-count closeness as
// the tie break; nothing below the cutoff is eligible. The returned index is
// where the candidate license text itself starts, which can sit below the
// window offset when non-license lines precede the comment-start marker.
func Fuzzy(src []string, tmpl license.Template, opts FuzzyOptions) (int, bool) {
	templateText := flattenTemplate(tmpl.Plain)
	expectedTokens := len(strings.Split(templateText, " "))

	bestIndex := -1
	bestRatio := 0
	bestTokenDiff := 0

	windowSize := len(tmpl.Plain) + tmpl.ExtraLines + opts.ExtraLines
	for i := 0; i < opts.TopLines; i++ {
		window := src[min(i, len(src)):min(i+windowSize, len(src))]
		candidate, offset := candidateString(window, tmpl.Style)

		ratio := TokenSetRatio(templateText, candidate)
		if ratio < opts.Cutoff {
			continue
		}
		tokenDiff := abs(len(strings.Split(candidate, " ")) - expectedTokens)
		if ratio > bestRatio || (ratio == bestRatio && tokenDiff < bestTokenDiff) {
			bestRatio = ratio
			bestTokenDiff = tokenDiff
			bestIndex = i + offset
		}
	}

	if bestIndex < 0 {
		return 0, false
	}
	return bestIndex, true
}

// flattenTemplate joins the plain template lines into one space-separated
// string with all line terminators dropped.
func flattenTemplate(plain []string) string {
	joined := strings.Join(plain, " ")
	joined = strings.ReplaceAll(joined, "\n", "")
	joined = strings.ReplaceAll(joined, "\r", "")
	return strings.TrimSpace(joined)
}

// candidateString extracts the comment-delimited license text from a window
// of source lines. The scan enters the license on the comment-start marker
// (text begins on the next line), or on the first comment-prefix line when no
// start marker exists, or immediately when the style has neither. It stops on
// the comment-end marker. Inside the span, lines without the prefix are
// skipped so stray blanks do not pollute the candidate. Returns the flattened
// candidate text and the offset within the window where it starts.
func candidateString(window []string, style license.Style) (string, int) {
	start := strings.TrimSpace(style.Start)
	prefix := strings.TrimSpace(style.Prefix)
	end := strings.TrimSpace(style.End)

	var b strings.Builder
	inLicense := false
	offset := 0
	foundOffset := 0

	for _, line := range window {
		stripped := strings.TrimSpace(line)
		if !inLicense {
			if start != "" {
				if strings.HasPrefix(stripped, start) {
					inLicense = true
					foundOffset = offset + 1 // license starts on the next line
					continue
				}
			} else if prefix != "" {
				if strings.HasPrefix(stripped, prefix) {
					inLicense = true
					foundOffset = offset
				}
			} else {
				inLicense = true
				foundOffset = offset
			}
		} else if end != "" && strings.HasPrefix(stripped, end) {
			break
		}
		if inLicense && (prefix == "" || strings.HasPrefix(stripped, prefix)) {
			b.WriteString(strings.TrimPrefix(stripped, prefix))
			b.WriteString(" ")
		}
		offset++
	}
	return strings.TrimSpace(b.String()), foundOffset
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
