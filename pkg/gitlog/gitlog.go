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

// Package gitlog derives copyright year ranges from a file's git history.
package gitlog

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/licenserc/pkg/years"
)

// Provider answers year-range queries from the local git repository. Query
// failures of any kind are treated as "no history available": a missing or
// untracked file falls back to wall-clock behavior rather than failing the
// run.
type Provider struct{}

// FileYearRange returns the years of the first and last commits affecting
// path, or nil when the path is untracked, the repository has no commits, or
// the clone is shallow (shallow history cannot be trusted to cover the file's
// whole life).
func (Provider) FileYearRange(ctx context.Context, path string) *years.Range {
	logger := zerolog.Ctx(ctx)

	if isShallowRepository(ctx) {
		logger.Debug().Str("path", path).Msg("shallow repository, ignoring git history")
		return nil
	}

	out, err := exec.CommandContext(ctx, "git", "log", "--follow", "--format=%aI", "--", path).Output()
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("git log failed, ignoring git history")
		return nil
	}

	// one author date per line, newest first
	dates := strings.Split(strings.TrimSpace(string(out)), "\n")
	first := dates[len(dates)-1]
	last := dates[0]
	if first == "" || last == "" {
		return nil
	}

	firstCommit, err := time.Parse(time.RFC3339, first)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("unparseable commit date")
		return nil
	}
	lastCommit, err := time.Parse(time.RFC3339, last)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("unparseable commit date")
		return nil
	}

	return &years.Range{Start: firstCommit.Year(), End: lastCommit.Year()}
}

func isShallowRepository(ctx context.Context) bool {
	out, err := exec.CommandContext(ctx, "git", "rev-parse", "--is-shallow-repository").Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "true"
}
