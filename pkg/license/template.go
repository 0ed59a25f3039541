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

// Package license builds the comment-framed header block that gets matched
// against and inserted into source files.
package license

import (
	"encoding/base64"
	"os"
	"strconv"
	"strings"

	"github.com/walteh/licenserc/pkg/srcfile"
	"github.com/walteh/licenserc/pkg/years"
	"gitlab.com/tozd/go/errors"
)

// Style describes the comment syntax used to frame the header. Prefix is
// applied to every line; Start and End wrap the block for block-comment
// styles and may be empty.
type Style struct {
	Start  string
	Prefix string
	End    string
}

// ParseStyle parses a comment-style flag value: either a single line prefix
// ("#", "//") or a start|prefix|end triplet ("/*| *| */"). Literal "\t" is
// unescaped to a tab.
func ParseStyle(raw string) (Style, error) {
	raw = strings.ReplaceAll(raw, `\t`, "\t")
	if !strings.Contains(raw, "|") {
		return Style{Prefix: raw}, nil
	}
	parts := strings.Split(raw, "|")
	if len(parts) != 3 {
		return Style{}, errors.Errorf("comment style %q: want <start>|<prefix>|<end>", raw)
	}
	return Style{Start: parts[0], Prefix: parts[1], End: parts[2]}, nil
}

// Template is an immutable license header. Framed is the literal line
// sequence matched against or spliced into files; Plain is the unframed
// template content used for fuzzy comparison. Year substitution returns a
// fresh Template instead of mutating a shared one.
type Template struct {
	Plain  []string
	Framed []string

	Style Style

	// Terminator is the line ending detected from the template ("\n" or
	// "\r\n"). EOL is the separator line appended after an inserted block;
	// empty when the extra line is disabled.
	Terminator string
	EOL        string

	// ExtraLines counts synthetic framing lines (comment start/end markers,
	// a forced final terminator): len(Framed) == len(Plain) + ExtraLines.
	ExtraLines int
}

// Options configures template loading.
type Options struct {
	Filepath string // path to the plain-text license body
	Base64   string // inline base64 payload, used instead of Filepath when set
	Style    Style

	NoSpaceInPrefix bool // do not add a space between prefix and content
	NoExtraEOL      bool // do not add a blank separator line after the block

	// UseCurrentYear rewrites the first year in the plain template to
	// CurrentYear before framing.
	UseCurrentYear bool
	CurrentYear    int
}

// Load reads the plain license body and frames it. Any failure here is fatal
// to the whole run: with no usable template there is nothing to match or
// insert.
func Load(opts Options) (Template, error) {
	plain, err := readPlain(opts)
	if err != nil {
		return Template{}, err
	}
	if len(plain) == 0 {
		return Template{}, errors.Errorf("license template is empty")
	}

	if opts.UseCurrentYear {
		for i, line := range plain {
			updated, ok, err := years.UpdateYear(line, opts.CurrentYear, false)
			if err != nil {
				return Template{}, errors.Errorf("updating template year: %w", err)
			}
			if ok {
				plain[i] = updated
				break
			}
		}
	}

	return frame(plain, opts), nil
}

func readPlain(opts Options) ([]string, error) {
	if opts.Base64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(opts.Base64)
		if err != nil {
			return nil, errors.Errorf("decoding base64 license: %w", err)
		}
		var plain []string
		for _, line := range strings.Split(strings.TrimRight(string(decoded), "\n"), "\n") {
			plain = append(plain, strings.TrimRight(line, "\r")+"\n")
		}
		return plain, nil
	}

	data, err := os.ReadFile(opts.Filepath)
	if err != nil {
		return nil, errors.Errorf("reading license file: %w", err)
	}
	return srcfile.SplitLines(string(data)), nil
}

func frame(plain []string, opts Options) Template {
	extraSpace := ""
	if !opts.NoSpaceInPrefix && opts.Style.Prefix != "" {
		extraSpace = " "
	}

	framed := make([]string, 0, len(plain)+2)
	for _, line := range plain {
		space := ""
		if extraSpace != "" && strings.TrimSpace(line) != "" {
			space = extraSpace
		}
		framed = append(framed, opts.Style.Prefix+space+line)
	}

	terminator := "\n"
	if strings.HasSuffix(framed[0], "\r\n") {
		terminator = "\r\n"
	}

	extra := 0
	if !strings.HasSuffix(framed[len(framed)-1], terminator) {
		framed[len(framed)-1] += terminator
		extra++
	}
	if opts.Style.Start != "" {
		framed = append([]string{opts.Style.Start + terminator}, framed...)
		extra++
	}
	if opts.Style.End != "" {
		framed = append(framed, opts.Style.End+terminator)
		extra++
	}

	eol := terminator
	if opts.NoExtraEOL {
		eol = ""
	}

	return Template{
		Plain:      plain,
		Framed:     framed,
		Style:      opts.Style,
		Terminator: terminator,
		EOL:        eol,
		ExtraLines: extra,
	}
}

// WithYearRange substitutes the {year_start} and {year_end} placeholders in
// the framed lines, returning a new Template.
func (t Template) WithYearRange(start, end int) Template {
	framed := make([]string, len(t.Framed))
	for i, line := range t.Framed {
		line = strings.ReplaceAll(line, "{year_start}", strconv.Itoa(start))
		line = strings.ReplaceAll(line, "{year_end}", strconv.Itoa(end))
		framed[i] = line
	}
	t.Framed = framed
	return t
}

// WithPlaceholderResolved replaces any still-unresolved placeholder end year
// in the framed lines with currentYear, returning a new Template.
func (t Template) WithPlaceholderResolved(currentYear int) Template {
	framed := make([]string, len(t.Framed))
	for i, line := range t.Framed {
		framed[i] = years.ResolvePlaceholder(line, currentYear)
	}
	t.Framed = framed
	return t
}
