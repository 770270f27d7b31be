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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/cli"
	"github.com/ZaparooProject/zaparoo-simjoin/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags(flag.CommandLine)
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if *flags.Version {
		_, _ = fmt.Printf("Zaparoo SimJoin v%s\n", cli.Version)
		return nil
	}

	logWriters := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	fs := afero.NewOsFs()

	cfg, err := cli.Setup(fs, flags, config.BaseDefaults, logWriters)
	if err != nil {
		return err
	}
	log.Info().Str("config", cfg.Path()).Msg("loaded job config")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := cli.Run(ctx, fs, cfg.Values(), nil)
	if err != nil {
		return err
	}

	_, _ = fmt.Printf("%d rows written to %s\n", res.Rows, res.OutPath)
	if res.Stored {
		_, _ = fmt.Printf("run %s stored\n", res.RunID)
	}
	return nil
}
