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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/zaparoo-simjoin/pkg/helpers/syncutil"
	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	SchemaVersion = 1
	CfgEnv        = "SIMJOIN_CFG"
	CfgFile       = "simjoin.toml"
	AppName       = "zaparoo-simjoin"
)

var ErrSchemaMismatch = errors.New("schema version mismatch")

type Values struct {
	Left         Input     `toml:"left" yaml:"left"`
	Right        Input     `toml:"right" yaml:"right"`
	Output       Output    `toml:"output" yaml:"output"`
	Tokenizer    Tokenizer `toml:"tokenizer" yaml:"tokenizer"`
	Matcher      Matcher   `toml:"matcher" yaml:"matcher"`
	Join         Join      `toml:"join" yaml:"join"`
	ConfigSchema int       `toml:"config_schema" yaml:"config_schema"`
	DebugLogging bool      `toml:"debug_logging" yaml:"debug_logging"`
}

type Join struct {
	Measure             string  `toml:"measure" yaml:"measure"`
	CompOp              string  `toml:"comp_op,omitempty" yaml:"comp_op,omitempty"`
	Threshold           float64 `toml:"threshold" yaml:"threshold"`
	NJobs               int     `toml:"n_jobs" yaml:"n_jobs"`
	AllowEmpty          bool    `toml:"allow_empty" yaml:"allow_empty"`
	AllowMissing        bool    `toml:"allow_missing" yaml:"allow_missing"`
	Normalize           bool    `toml:"normalize" yaml:"normalize"`
	OutSimScore         bool    `toml:"out_sim_score" yaml:"out_sim_score"`
	DisableSuffixFilter bool    `toml:"disable_suffix_filter,omitempty" yaml:"disable_suffix_filter,omitempty"`
}

// Tokenizer selects how join attributes are split. Kind is one of
// "whitespace", "delimiter" or "qgram". A nil Padding means padded q-grams.
type Tokenizer struct {
	Padding    *bool    `toml:"padding,omitempty" yaml:"padding,omitempty"`
	Kind       string   `toml:"kind" yaml:"kind"`
	Delimiters []string `toml:"delimiters,omitempty" yaml:"delimiters,omitempty"`
	Q          int      `toml:"q,omitempty" yaml:"q,omitempty"`
}

// Input describes one side of the join.
type Input struct {
	Path      string   `toml:"path" yaml:"path"`
	KeyAttr   string   `toml:"key_attr" yaml:"key_attr"`
	JoinAttr  string   `toml:"join_attr" yaml:"join_attr"`
	OutPrefix string   `toml:"out_prefix,omitempty" yaml:"out_prefix,omitempty"`
	OutAttrs  []string `toml:"out_attrs,omitempty,multiline" yaml:"out_attrs,omitempty"`
}

// Matcher switches a job from joining to scoring an existing candidate set
// with a named string scorer. Candidate set key columns default to the
// output prefixes followed by the key attributes.
type Matcher struct {
	Candset  string `toml:"candset,omitempty" yaml:"candset,omitempty"`
	Scorer   string `toml:"scorer,omitempty" yaml:"scorer,omitempty"`
	CandLKey string `toml:"cand_l_key,omitempty" yaml:"cand_l_key,omitempty"`
	CandRKey string `toml:"cand_r_key,omitempty" yaml:"cand_r_key,omitempty"`
}

type Output struct {
	Path     string `toml:"path" yaml:"path"`
	Database string `toml:"database,omitempty" yaml:"database,omitempty"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Join: Join{
		Measure:     "jaccard",
		Threshold:   0.7,
		NJobs:       1,
		OutSimScore: true,
	},
	Tokenizer: Tokenizer{
		Kind: TokenizerWhitespace,
		Q:    2,
	},
	Left:   Input{KeyAttr: "id", JoinAttr: "name"},
	Right:  Input{KeyAttr: "id", JoinAttr: "name"},
	Output: Output{Path: "pairs.csv"},
}

type Instance struct {
	fs       afero.Fs
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// DefaultDir is the per-user config directory.
func DefaultDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// NewConfig loads the job file from configDir, or from the path in the
// SIMJOIN_CFG env var when set. A missing file is created from defaults.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(fs afero.Fs, configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}
	return Open(fs, cfgPath, defaults)
}

// Open loads the job file at cfgPath, creating it from defaults if it does
// not exist.
//
//nolint:gocritic // config struct copied for immutability
func Open(fs afero.Fs, cfgPath string, defaults Values) (*Instance, error) {
	cfg := Instance{
		fs:       fs,
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	exists, err := afero.Exists(fs, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !exists {
		log.Info().Str("path", cfgPath).Msg("saving new default config to disk")

		if err := fs.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// isYAML reports whether path names a YAML job file. Everything else is
// read as TOML.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Fields missing from the file keep their default values.
	newVals := c.defaults
	if isYAML(c.cfgPath) {
		err = yaml.Unmarshal(data, &newVals)
	} else {
		err = toml.Unmarshal(data, &newVals)
	}
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return ErrSchemaMismatch
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	var (
		data []byte
		err  error
	)
	if isYAML(c.cfgPath) {
		data, err = yaml.Marshal(&c.vals)
	} else {
		data, err = toml.Marshal(&c.vals)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := afero.WriteFile(c.fs, c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) Path() string {
	return c.cfgPath
}

// Values returns a copy of the loaded values.
func (c *Instance) Values() Values {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vals := c.vals
	vals.Left.OutAttrs = append([]string(nil), c.vals.Left.OutAttrs...)
	vals.Right.OutAttrs = append([]string(nil), c.vals.Right.OutAttrs...)
	vals.Tokenizer.Delimiters = append([]string(nil), c.vals.Tokenizer.Delimiters...)
	return vals
}

// Update applies fn to the loaded values under the write lock.
func (c *Instance) Update(fn func(v *Values)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.vals)
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
