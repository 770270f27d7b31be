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

// Package cli parses the simjoin command line, merges it over the job
// config and runs the selected join or matcher.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/config"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/measures"
	"github.com/spf13/afero"
)

// Version is set at build time.
var Version = "dev"

type Flags struct {
	set          *flag.FlagSet
	Config       *string
	Measure      *string
	CompOp       *string
	Tokenizer    *string
	Left         *string
	Right        *string
	LeftKey      *string
	RightKey     *string
	LeftAttr     *string
	RightAttr    *string
	Out          *string
	DB           *string
	Candset      *string
	Scorer       *string
	LogDir       *string
	Threshold    *float64
	Q            *int
	NJobs        *int
	Normalize    *bool
	AllowEmpty   *bool
	AllowMissing *bool
	Debug        *bool
	Version      *bool
}

// SetupFlags defines the simjoin flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		set: fs,
		Config: fs.String(
			"config",
			"",
			"path to the job config file",
		),
		Measure: fs.String(
			"measure",
			"",
			"similarity measure: "+strings.Join(measures.MeasureNames(), ", "),
		),
		CompOp: fs.String(
			"op",
			"",
			"comparison operator (>=, >, <=, <, =, !=)",
		),
		Tokenizer: fs.String(
			"tokenizer",
			"",
			"tokenizer kind: ws, delimiter or qgram",
		),
		Left: fs.String(
			"left",
			"",
			"left table CSV",
		),
		Right: fs.String(
			"right",
			"",
			"right table CSV",
		),
		LeftKey: fs.String(
			"left-key",
			"",
			"left key attribute",
		),
		RightKey: fs.String(
			"right-key",
			"",
			"right key attribute",
		),
		LeftAttr: fs.String(
			"left-attr",
			"",
			"left join attribute",
		),
		RightAttr: fs.String(
			"right-attr",
			"",
			"right join attribute",
		),
		Out: fs.String(
			"out",
			"",
			"output CSV for the matching pairs",
		),
		DB: fs.String(
			"db",
			"",
			"SQLite database to store the run in",
		),
		Candset: fs.String(
			"candset",
			"",
			"candidate set CSV to score instead of joining",
		),
		Scorer: fs.String(
			"scorer",
			"",
			"string scorer for -candset: "+strings.Join(measures.ScorerNames(), ", "),
		),
		LogDir: fs.String(
			"log-dir",
			helpers.DefaultLogDir(),
			"directory for the log file",
		),
		Threshold: fs.Float64(
			"threshold",
			0,
			"join threshold",
		),
		Q: fs.Int(
			"q",
			0,
			"q-gram length",
		),
		NJobs: fs.Int(
			"n-jobs",
			0,
			"number of partitions, negative counts back from CPUs + 1",
		),
		Normalize: fs.Bool(
			"normalize",
			false,
			"normalize join attributes before joining",
		),
		AllowEmpty: fs.Bool(
			"allow-empty",
			false,
			"pair values without tokens at score 1",
		),
		AllowMissing: fs.Bool(
			"allow-missing",
			false,
			"include pairs with a missing join value",
		),
		Debug: fs.Bool(
			"debug",
			false,
			"enable debug logging",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

// Parse parses args without the program name.
func (f *Flags) Parse(args []string) error {
	//nolint:wrapcheck // flag errors are already user facing
	return f.set.Parse(args)
}

func (f *Flags) isPassed(name string) bool {
	found := false
	f.set.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Apply overrides v with every flag given on the command line.
func (f *Flags) Apply(v *config.Values) {
	strs := []struct {
		src  *string
		dst  *string
		name string
	}{
		{name: "measure", src: f.Measure, dst: &v.Join.Measure},
		{name: "op", src: f.CompOp, dst: &v.Join.CompOp},
		{name: "tokenizer", src: f.Tokenizer, dst: &v.Tokenizer.Kind},
		{name: "left", src: f.Left, dst: &v.Left.Path},
		{name: "right", src: f.Right, dst: &v.Right.Path},
		{name: "left-key", src: f.LeftKey, dst: &v.Left.KeyAttr},
		{name: "right-key", src: f.RightKey, dst: &v.Right.KeyAttr},
		{name: "left-attr", src: f.LeftAttr, dst: &v.Left.JoinAttr},
		{name: "right-attr", src: f.RightAttr, dst: &v.Right.JoinAttr},
		{name: "out", src: f.Out, dst: &v.Output.Path},
		{name: "db", src: f.DB, dst: &v.Output.Database},
		{name: "candset", src: f.Candset, dst: &v.Matcher.Candset},
		{name: "scorer", src: f.Scorer, dst: &v.Matcher.Scorer},
	}
	for _, s := range strs {
		if f.isPassed(s.name) {
			*s.dst = *s.src
		}
	}

	if f.isPassed("threshold") {
		v.Join.Threshold = *f.Threshold
	}
	if f.isPassed("q") {
		v.Tokenizer.Q = *f.Q
	}
	if f.isPassed("n-jobs") {
		v.Join.NJobs = *f.NJobs
	}
	if f.isPassed("normalize") {
		v.Join.Normalize = *f.Normalize
	}
	if f.isPassed("allow-empty") {
		v.Join.AllowEmpty = *f.AllowEmpty
	}
	if f.isPassed("allow-missing") {
		v.Join.AllowMissing = *f.AllowMissing
	}
	if f.isPassed("debug") {
		v.DebugLogging = *f.Debug
	}
}

// Setup initializes logging and loads the job config with the command line
// applied over it.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	fs afero.Fs,
	flags *Flags,
	defaults config.Values,
	writers []io.Writer,
) (*config.Instance, error) {
	if err := helpers.InitLogging(*flags.LogDir, writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	var (
		cfg *config.Instance
		err error
	)
	if *flags.Config != "" {
		cfg, err = config.Open(fs, *flags.Config, defaults)
	} else {
		cfg, err = config.NewConfig(fs, config.DefaultDir(), defaults)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	cfg.Update(flags.Apply)
	cfg.SetDebugLogging(cfg.DebugLogging())
	return cfg, nil
}
