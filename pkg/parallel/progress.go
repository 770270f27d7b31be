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

package parallel

import (
	"time"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const progressLogInterval = 2 * time.Second

// progress counts finished partitions and rows across workers. Each
// partition is logged at debug level; an info summary is logged at most
// once per progressLogInterval.
type progress struct {
	summary   rate.Sometimes
	mu        syncutil.Mutex
	parts     int
	rows      int
	doneParts int
	doneRows  int
}

func newProgress(parts, rows int) *progress {
	return &progress{
		parts:   parts,
		rows:    rows,
		summary: rate.Sometimes{Interval: progressLogInterval},
	}
}

func (p *progress) finish(part int, r Range, produced int) {
	p.mu.Lock()
	p.doneParts++
	p.doneRows += r.Len()
	doneParts, doneRows := p.doneParts, p.doneRows
	p.mu.Unlock()

	log.Debug().
		Int("partition", part).
		Int("start", r.Start).
		Int("end", r.End).
		Int("produced", produced).
		Msg("partition finished")

	if p.parts > 1 {
		p.summary.Do(func() {
			log.Info().
				Int("doneParts", doneParts).
				Int("totalParts", p.parts).
				Int("doneRows", doneRows).
				Int("totalRows", p.rows).
				Msg("join progress")
		})
	}
}

func (p *progress) completed() (parts, rows int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doneParts, p.doneRows
}
