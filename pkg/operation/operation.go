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

// Package operation drives license headers through source files: per file it
// decides whether the header is present, fuzzy-present, or missing, and
// inserts, updates, removes, or flags accordingly.
package operation

import (
	"context"
	"regexp"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/licenserc/pkg/config"
	"github.com/walteh/licenserc/pkg/license"
	"github.com/walteh/licenserc/pkg/log"
	"github.com/walteh/licenserc/pkg/years"
	"gitlab.com/tozd/go/errors"
)

// HistoryProvider answers version-control year-range queries for a path.
// A nil result means no trustworthy history is available.
type HistoryProvider interface {
	FileYearRange(ctx context.Context, path string) *years.Range
}

// Options contains configuration for the processor.
type Options struct {
	// Config is the run configuration.
	Config *config.Config
	// Template is the framed license header for this run.
	Template license.Template
	// Logger receives per-file console output; optional.
	Logger *log.Logger
	// History supplies git-derived year ranges; required only when
	// Config.DynamicYears is set.
	History HistoryProvider
	// Now supplies the wall clock; defaults to time.Now.
	Now func() time.Time
}

// Result aggregates a whole run over a batch of files.
type Result struct {
	// Changed lists files this run modified.
	Changed []string
	// Flagged lists files newly or already annotated as inconsistent.
	Flagged []string
	// UpdateFailed is set when at least one file's year range could not be
	// reconciled; those files are left unmodified.
	UpdateFailed bool
}

// Failed reports whether the run should signal a non-zero exit: any change,
// any flagged file, or any reconciliation failure.
func (r *Result) Failed() bool {
	return len(r.Changed) > 0 || len(r.Flagged) > 0 || r.UpdateFailed
}

// Processor runs the per-file pipeline. Files are processed one at a time
// and independently; the only cross-file state is the aggregated Result.
type Processor struct {
	cfg         *config.Config
	tmpl        license.Template
	logger      *log.Logger
	history     HistoryProvider
	now         func() time.Time
	insertAfter *regexp.Regexp
}

// New creates a processor, compiling the optional insert-after pattern.
func New(opts Options) (*Processor, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if len(opts.Template.Framed) == 0 {
		return nil, errors.Errorf("template is required")
	}
	if opts.Config.DynamicYears && opts.History == nil {
		return nil, errors.Errorf("history provider is required for dynamic years")
	}

	var insertAfter *regexp.Regexp
	if opts.Config.InsertAfterRegex != "" {
		re, err := regexp.Compile(opts.Config.InsertAfterRegex)
		if err != nil {
			return nil, errors.Errorf("compiling insert-after pattern: %w", err)
		}
		insertAfter = re
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Processor{
		cfg:         opts.Config,
		tmpl:        opts.Template,
		logger:      opts.Logger,
		history:     opts.History,
		now:         now,
		insertAfter: insertAfter,
	}, nil
}

// FilterFiles applies the config's include/exclude glob patterns to the
// positional file arguments. An empty include list keeps everything.
func FilterFiles(cfg *config.Config, files []string) ([]string, error) {
	if len(cfg.Include) == 0 && len(cfg.Exclude) == 0 {
		return files, nil
	}

	var kept []string
	for _, file := range files {
		keep := len(cfg.Include) == 0
		for _, pattern := range cfg.Include {
			matched, err := doublestar.Match(pattern, file)
			if err != nil {
				return nil, errors.Errorf("include pattern %q: %w", pattern, err)
			}
			if matched {
				keep = true
				break
			}
		}
		for _, pattern := range cfg.Exclude {
			matched, err := doublestar.Match(pattern, file)
			if err != nil {
				return nil, errors.Errorf("exclude pattern %q: %w", pattern, err)
			}
			if matched {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, file)
		}
	}
	return kept, nil
}

func (p *Processor) logFile(path string, status log.FileStatus, detail string) {
	if p.logger == nil {
		return
	}
	p.logger.LogFileOperation(log.FileOperation{Path: path, Status: status, Detail: detail})
}
