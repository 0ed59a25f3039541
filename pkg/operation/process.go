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
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/licenserc/pkg/license"
	"github.com/walteh/licenserc/pkg/log"
	"github.com/walteh/licenserc/pkg/match"
	"github.com/walteh/licenserc/pkg/srcfile"
	"github.com/walteh/licenserc/pkg/years"
	"gitlab.com/tozd/go/errors"
)

// Run processes each file through the pipeline: skip marker, existing TODO
// marker, exact match, fuzzy match, year reconciliation, edit. Per-file
// errors are reported and collected; they never abort the batch.
func (p *Processor) Run(ctx context.Context, files []string) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	files, err := FilterFiles(p.cfg, files)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, path := range files {
		logger.Debug().Str("path", path).Msg("processing file")
		p.processFile(ctx, path, result)
	}
	return result, nil
}

func (p *Processor) processFile(ctx context.Context, path string, result *Result) {
	logger := zerolog.Ctx(ctx)

	file, err := srcfile.Read(path)
	if err != nil {
		p.logFile(path, log.StatusError, err.Error())
		if p.logger == nil {
			logger.Error().Err(err).Str("path", path).Msg("reading file")
		}
		return
	}

	if containsInTop(file.Lines, p.cfg.SkipComment, p.cfg.TopLines) {
		p.logFile(path, log.StatusSkipped, "skip marker present")
		return
	}
	if containsInTop(file.Lines, p.cfg.FuzzyTodoComment, p.cfg.TopLines) {
		result.Flagged = append(result.Flagged, path)
		p.logFile(path, log.StatusFlagged, "existing inconsistency marker")
		return
	}

	currentYear := p.now().Year()
	tmpl := p.tmpl
	targetYear := currentYear

	if p.cfg.DynamicYears {
		tmpl, targetYear = p.reconcileYears(ctx, file, currentYear)
	}

	headerIndex, found := match.Exact(file.Lines, tmpl, p.cfg.TopLines, !p.cfg.AllowPastYears)
	if found {
		p.handleExactMatch(file, tmpl, headerIndex, targetYear, result)
		return
	}

	if p.cfg.FuzzyMatchGeneratesTodo {
		fuzzyIndex, fuzzyFound := match.Fuzzy(file.Lines, tmpl, match.FuzzyOptions{
			TopLines:   p.cfg.TopLines,
			ExtraLines: p.cfg.FuzzyExtraLines,
			Cutoff:     p.cfg.FuzzyRatioCutoff,
		})
		if fuzzyFound {
			if err := annotateInconsistent(file, tmpl, fuzzyIndex, p.cfg.FuzzyTodoComment, p.cfg.FuzzyTodoInstructions); err != nil {
				p.logFile(file.Path, log.StatusError, err.Error())
				return
			}
			result.Flagged = append(result.Flagged, path)
			p.logFile(path, log.StatusFlagged, "near-match annotated")
			return
		}
	}

	if p.cfg.RemoveHeader {
		p.logFile(path, log.StatusUnchanged, "")
		return
	}

	// commit data may have been missing at template-build time
	if p.cfg.DynamicYears {
		tmpl = tmpl.WithPlaceholderResolved(currentYear)
	}

	if err := insertHeader(file, tmpl, p.insertAfter); err != nil {
		p.logFile(path, log.StatusError, err.Error())
		return
	}
	result.Changed = append(result.Changed, path)
	p.logFile(path, log.StatusInserted, "")
}

// handleExactMatch applies the configured edit to a located header.
func (p *Processor) handleExactMatch(file *srcfile.File, tmpl license.Template, headerIndex, targetYear int, result *Result) {
	if p.cfg.RemoveHeader {
		if err := removeHeader(file, tmpl, headerIndex); err != nil {
			p.logFile(file.Path, log.StatusError, err.Error())
			return
		}
		result.Changed = append(result.Changed, file.Path)
		p.logFile(file.Path, log.StatusRemoved, "")
		return
	}

	if p.cfg.UseCurrentYear || p.cfg.DynamicYears {
		updated, err := updateYearRange(file, headerIndex, len(tmpl.Framed), targetYear)
		if err != nil {
			// reconciliation failure: report, leave the file alone, and mark
			// the run failed without stopping the batch
			if errors.Is(err, years.ErrUpdateFailed) {
				result.UpdateFailed = true
			}
			p.logFile(file.Path, log.StatusError, err.Error())
			return
		}
		if updated {
			result.Changed = append(result.Changed, file.Path)
			p.logFile(file.Path, log.StatusUpdated, "")
			return
		}
	}

	p.logFile(file.Path, log.StatusUnchanged, "")
}

// reconcileYears computes the per-file template for dynamic-year mode and the
// end year any in-file range should be advanced to. The templated end year
// comes from commit history (or the placeholder when there is none); the
// target year for updates prefers history unless that would write a value
// already known to be stale.
func (p *Processor) reconcileYears(ctx context.Context, file *srcfile.File, currentYear int) (license.Template, int) {
	logger := zerolog.Ctx(ctx)

	existing := years.FirstRange(file.Lines)
	historyRange := p.history.FileYearRange(ctx, file.Path)

	historyStart, historyEnd := currentYear, years.PlaceholderEnd
	if historyRange != nil {
		historyStart, historyEnd = historyRange.Start, historyRange.End
	}

	targetYear := years.ResolveEndYear(existing, historyEnd, currentYear)

	logger.Debug().
		Str("path", file.Path).
		Interface("existing", existing).
		Interface("history", historyRange).
		Int("target_year", targetYear).
		Msg("reconciled years")

	return p.tmpl.WithYearRange(historyStart, historyEnd), targetYear
}

// containsInTop reports whether marker occurs in the first topLines lines.
func containsInTop(lines []string, marker string, topLines int) bool {
	for i := 0; i < topLines && i < len(lines); i++ {
		if strings.Contains(lines[i], marker) {
			return true
		}
	}
	return false
}
