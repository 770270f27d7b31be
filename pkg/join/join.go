// Zaparoo SimJoin
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo SimJoin.
//
// Zaparoo SimJoin is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo SimJoin is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo SimJoin.  If not, see <http://www.gnu.org/licenses/>.

// Package join implements the similarity joins: set similarity joins over
// the position and suffix filters, the edit distance join over the prefix
// filter, overlap and overlap coefficient joins over an inverted index, and
// ApplyMatcher for scoring an existing candidate set.
package join

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/filters"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/tokenizers"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/validation"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var ErrUnsupportedMeasure = errors.New("measure not supported by join")

// DefaultQval is the q-gram length of the edit distance join when no
// tokenizer is given.
const DefaultQval = 2

// Options configures a join. An unset CompOp means >= for similarity
// measures and <= for edit distance.
type Options struct {
	Tokenizer tokenizers.Tokenizer
	Clock     clockwork.Clock
	pairs.Spec
	Threshold float64
	NJobs     int
	CompOp    measures.CompOp
	// AllowEmpty pairs rows whose join values have no tokens with each
	// other at score 1.0. Set similarity joins only.
	AllowEmpty bool
	// AllowMissing appends pairs with a null join value on either side.
	AllowMissing bool
	// DisableSuffixFilter skips the suffix filter in set similarity joins.
	// The output is the same either way.
	DisableSuffixFilter bool
}

// Join runs the join for measure m.
func Join(ctx context.Context, left, right *table.Table, m measures.Measure, opts Options) (*pairs.Output, error) {
	switch m {
	case measures.Jaccard, measures.Cosine, measures.Dice:
		return SetSimJoin(ctx, left, right, m, opts)
	case measures.EditDistance:
		return EditDistanceJoin(ctx, left, right, opts)
	case measures.Overlap:
		return OverlapJoin(ctx, left, right, opts)
	case measures.OverlapCoefficient:
		return OverlapCoefficientJoin(ctx, left, right, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMeasure, m)
	}
}

// driver is the per-partition candidate generation and verification of one
// join, run over tokens prepared from the build table and a probe
// partition.
type driver func(ctx context.Context, p *filters.Prepared) ([]pairs.Match, error)

// run validates the request and executes drv over the probe partitions.
func run(
	ctx context.Context,
	left, right *table.Table,
	m measures.Measure,
	opts Options,
	drv driver,
) (*pairs.Output, error) {
	if err := validation.ValidateParams(validation.Params{
		Tokenizer: opts.Tokenizer,
		Measure:   m,
		CompOp:    opts.CompOp,
		Threshold: opts.Threshold,
		NJobs:     opts.NJobs,
	}); err != nil {
		return nil, fmt.Errorf("invalid %s join: %w", m, err)
	}
	if err := validation.ValidateTables(left, right, opts.Spec); err != nil {
		return nil, err //nolint:wrapcheck // validation errors are user facing
	}
	res, err := opts.Spec.Resolve(left, right)
	if err != nil {
		return nil, err //nolint:wrapcheck // already checked by ValidateTables
	}

	tok := opts.Tokenizer.WithReturnSet(m != measures.EditDistance)
	log.Debug().
		Str("measure", m.String()).
		Float64("threshold", opts.Threshold).
		Str("op", opts.CompOp.Or(measures.DefaultCompOp(m)).String()).
		Str("tokenizer", tok.String()).
		Bool("allowEmpty", opts.AllowEmpty).
		Bool("allowMissing", opts.AllowMissing).
		Msg("similarity join requested")

	execOpts := pairs.Options{
		Clock:        opts.Clock,
		Label:        m.String() + " join",
		NJobs:        opts.NJobs,
		AllowMissing: opts.AllowMissing,
	}
	return pairs.Execute(ctx, left, right, opts.Spec, execOpts,
		func(ctx context.Context, build, probe *table.Table) ([]pairs.Match, error) {
			return drv(ctx, filters.Prepare(tok, build, probe, res.LJoin, res.RJoin))
		})
}

// emptyMatches pairs every probe row without tokens with every build row
// without tokens at score 1.0, when AllowEmpty is set and the operator
// accepts that score.
func emptyMatches(p *filters.Prepared, opts Options, op measures.CompOp) []pairs.Match {
	if !opts.AllowEmpty || !op.Compare(1, opts.Threshold) {
		return nil
	}
	var out []pairs.Match
	for r, toks := range p.Probe {
		if !p.ProbeBlank[r] && len(toks) == 0 {
			out = append(out, p.EmptyMatches(r, 1)...)
		}
	}
	return out
}
