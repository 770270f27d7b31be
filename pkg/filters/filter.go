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

// Package filters implements the candidate pruning filters of the join
// engine: size, prefix, position, suffix and overlap. Each filter can test a
// single pair, generate candidates for two whole tables, or re-filter an
// existing candidate set. All filters are sound: a pair that satisfies the
// measure and threshold is never dropped.
package filters

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/pairs"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/table"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/tokenizers"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/validation"
)

var ErrUnsupportedMeasure = errors.New("measure not supported by filter")

// Config configures a filter. CompOp is only read by the overlap filter.
type Config struct {
	Tokenizer    tokenizers.Tokenizer
	Measure      measures.Measure
	Threshold    float64
	CompOp       measures.CompOp
	AllowEmpty   bool
	AllowMissing bool
}

// Filter is the common surface of every filter.
type Filter interface {
	// FilterPair reports whether the pair of join values is dropped.
	FilterPair(l, r table.Value) bool
	// FilterTables returns every candidate pair of the two tables.
	FilterTables(ctx context.Context, left, right *table.Table, spec pairs.Spec, nJobs int) (*pairs.Output, error)
	// FilterCandset returns the rows of candset whose pair is not dropped.
	FilterCandset(ctx context.Context, candset, left, right *table.Table, keys pairs.CandsetKeys,
		lJoinAttr, rJoinAttr string, nJobs int) (*table.Table, error)
}

type base struct {
	tok    tokenizers.Tokenizer
	name   string
	cfg    Config
	bounds measures.Bounds
}

func newBase(name string, cfg Config, supported ...measures.Measure) (base, error) {
	if !slices.Contains(supported, cfg.Measure) {
		return base{}, fmt.Errorf("%w: %s filter does not support %s", ErrUnsupportedMeasure, name, cfg.Measure)
	}
	op := measures.OpUnset
	if cfg.Measure == measures.Overlap {
		op = cfg.CompOp
	}
	if err := validation.ValidateParams(validation.Params{
		Tokenizer: cfg.Tokenizer,
		Measure:   cfg.Measure,
		CompOp:    op,
		Threshold: cfg.Threshold,
		NJobs:     1,
	}); err != nil {
		return base{}, fmt.Errorf("invalid %s filter: %w", name, err)
	}
	cfg.CompOp = cfg.CompOp.Or(measures.DefaultCompOp(cfg.Measure))
	return base{
		name:   name,
		cfg:    cfg,
		tok:    cfg.Tokenizer.WithReturnSet(cfg.Measure != measures.EditDistance),
		bounds: measures.NewBounds(cfg.Measure, cfg.Threshold, cfg.Tokenizer.Qval()),
	}, nil
}

// orderPair applies the missing and empty value rules to a pair. When
// decided is true the pair is settled and dropped holds the outcome;
// otherwise l and r are the pair's ordered tokens under a pair-local
// ordering.
func (b *base) orderPair(lv, rv table.Value) (l, r []int, dropped, decided bool) {
	if lv.IsNull() || rv.IsNull() {
		return nil, nil, !b.cfg.AllowMissing, true
	}
	if lv.V == "" || rv.V == "" {
		return nil, nil, true, true
	}

	lt, rt := b.tok.Tokenize(lv.V), b.tok.Tokenize(rv.V)
	if b.cfg.Measure == measures.EditDistance {
		if len(lt) == 0 && len(rt) == 0 {
			return nil, nil, false, true
		}
	} else {
		switch {
		case len(lt) == 0 && len(rt) == 0:
			if b.cfg.Measure == measures.Overlap {
				return nil, nil, true, true
			}
			return nil, nil, !b.cfg.AllowEmpty, true
		case len(lt) == 0 || len(rt) == 0:
			return nil, nil, true, true
		}
	}

	ord := tokenizers.NewOrdering(lt, rt)
	return ord.Order(lt), ord.Order(rt), false, false
}

// runTables validates the inputs and executes gen over the probe table
// partitions. Only the overlap filter reports a score.
func (b *base) runTables(
	ctx context.Context,
	left, right *table.Table,
	spec pairs.Spec,
	nJobs int,
	withScore bool,
	gen func(ctx context.Context, p *Prepared) ([]pairs.Match, error),
) (*pairs.Output, error) {
	if err := validation.ValidateTables(left, right, spec); err != nil {
		return nil, err //nolint:wrapcheck // validation errors are user facing
	}
	if err := validation.ValidateNJobs(nJobs); err != nil {
		return nil, err //nolint:wrapcheck // validation errors are user facing
	}
	res, err := spec.Resolve(left, right)
	if err != nil {
		return nil, err
	}
	spec.OutSimScore = spec.OutSimScore && withScore

	opts := pairs.Options{NJobs: nJobs, AllowMissing: b.cfg.AllowMissing, Label: b.name + " filter"}
	return pairs.Execute(ctx, left, right, spec, opts,
		func(ctx context.Context, build, probe *table.Table) ([]pairs.Match, error) {
			return gen(ctx, Prepare(b.tok, build, probe, res.LJoin, res.RJoin))
		})
}

// filterCandset keeps the candidate set rows whose pair passes drop.
func (b *base) filterCandset(
	ctx context.Context,
	candset, left, right *table.Table,
	keys pairs.CandsetKeys,
	lJoinAttr, rJoinAttr string,
	nJobs int,
	drop func(l, r table.Value) bool,
) (*table.Table, error) {
	if err := validation.ValidateNJobs(nJobs); err != nil {
		return nil, err //nolint:wrapcheck // validation errors are user facing
	}
	lj, err := left.ColumnIndex(lJoinAttr)
	if err != nil {
		return nil, fmt.Errorf("left join attribute: %w", err)
	}
	rj, err := right.ColumnIndex(rJoinAttr)
	if err != nil {
		return nil, fmt.Errorf("right join attribute: %w", err)
	}

	kept, err := pairs.ScanCandset(ctx, candset, left, right, keys, nJobs,
		func(l, r table.Row) (float64, bool) {
			return 0, !drop(l[lj], r[rj])
		})
	if err != nil {
		return nil, fmt.Errorf("%s filter: %w", b.name, err)
	}

	out := &table.Table{Columns: candset.Columns, Rows: make([]table.Row, len(kept))}
	for i, m := range kept {
		out.Rows[i] = candset.Rows[m.Index]
	}
	return out, nil
}

var (
	_ Filter = (*SizeFilter)(nil)
	_ Filter = (*PrefixFilter)(nil)
	_ Filter = (*PositionFilter)(nil)
	_ Filter = (*SuffixFilter)(nil)
	_ Filter = (*OverlapFilter)(nil)
)
