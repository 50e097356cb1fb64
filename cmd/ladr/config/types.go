// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AleutianAI/AleutianLADR/pkg/logging"
	"github.com/AleutianAI/AleutianLADR/services/ladr/options"
	"github.com/AleutianAI/AleutianLADR/services/ladr/storage/badger"
	"github.com/AleutianAI/AleutianLADR/services/ladr/telemetry"
	"github.com/AleutianAI/AleutianLADR/services/ladr/topinput"
)

// LADRConfig is the contents of ladr.yaml.
type LADRConfig struct {
	// UnknownAction is what set/clear/assign of an unknown option does.
	UnknownAction string `yaml:"unknown_action" validate:"omitempty,oneof=ignore warn error"`

	// Echo prints each accepted directive to stdout.
	Echo bool `yaml:"echo"`

	// WildcardFallback routes unmatched list names to a "*" list.
	WildcardFallback bool `yaml:"wildcard_fallback"`

	// Lists exist before any input is read.
	Lists []ListConfig `yaml:"lists,omitempty" validate:"dive"`

	// StrictArity makes a name used with two arities an error.
	StrictArity bool `yaml:"strict_arity"`

	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Store     StoreConfig     `yaml:"store"`

	// Options are applied to the registry before any input.
	Options OptionsConfig `yaml:"options"`
}

type ListConfig struct {
	Name string `yaml:"name" validate:"required"`
	Kind string `yaml:"kind" validate:"omitempty,oneof=formulas terms"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"loglevel"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir,omitempty"`
}

type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" validate:"omitempty,oneof=otlp stdout none"`
	MetricExporter string `yaml:"metric_exporter" validate:"omitempty,oneof=prometheus stdout none"`
	OTLPEndpoint   string `yaml:"otlp_endpoint,omitempty" validate:"omitempty,hostname_port"`
	PrometheusPort int    `yaml:"prometheus_port" validate:"gte=0,lte=65535"`
}

type StoreConfig struct {
	// Path is the run store directory. Empty means DefaultStorePath.
	Path     string `yaml:"path,omitempty"`
	InMemory bool   `yaml:"in_memory"`
}

type OptionsConfig struct {
	Flags       map[string]bool   `yaml:"flags,omitempty"`
	Parms       map[string]int    `yaml:"parms,omitempty"`
	StringParms map[string]string `yaml:"stringparms,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() LADRConfig {
	return LADRConfig{
		UnknownAction:    "error",
		WildcardFallback: true,
		Logging:          LoggingConfig{Level: "info"},
		Telemetry: TelemetryConfig{
			TraceExporter:  telemetry.ExporterNone,
			MetricExporter: telemetry.ExporterNone,
			OTLPEndpoint:   "localhost:4317",
			PrometheusPort: 9090,
		},
	}
}

// DefaultStorePath is ~/.aleutian/ladr/runs, or ./.ladr/runs without a
// home directory.
func DefaultStorePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".aleutian", "ladr", "runs")
	}
	return filepath.Join(".ladr", "runs")
}

// InterpreterConfig converts the file settings for topinput. Engine and
// Echo are left for the caller.
func (c LADRConfig) InterpreterConfig() (topinput.Config, error) {
	cfg := topinput.Config{DisableWildcard: !c.WildcardFallback}
	if c.UnknownAction != "" {
		p, ok := topinput.ParseUnknownPolicy(c.UnknownAction)
		if !ok {
			return cfg, fmt.Errorf("unknown_action %q", c.UnknownAction)
		}
		cfg.Unknown = p
	}
	for _, l := range c.Lists {
		kind := topinput.FormulaList
		if l.Kind == "terms" {
			kind = topinput.TermList
		}
		cfg.Lists = append(cfg.Lists, topinput.ListSpec{Name: l.Name, Kind: kind})
	}
	return cfg, nil
}

// LoggerConfig converts the logging section for pkg/logging.
func (c LADRConfig) LoggerConfig(service string) (logging.Config, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return logging.Config{}, err
	}
	return logging.Config{Level: level, JSON: c.Logging.JSON, LogDir: c.Logging.Dir, Service: service}, nil
}

// TelemetrySettings converts the telemetry section, keeping the package
// defaults for what the file does not set.
func (c LADRConfig) TelemetrySettings() telemetry.Config {
	cfg := telemetry.DefaultConfig()
	if c.Telemetry.TraceExporter != "" {
		cfg.TraceExporter = c.Telemetry.TraceExporter
	}
	if c.Telemetry.MetricExporter != "" {
		cfg.MetricExporter = c.Telemetry.MetricExporter
	}
	if c.Telemetry.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	}
	return cfg
}

// StoreSettings converts the store section for the badger package.
func (c LADRConfig) StoreSettings() badger.Config {
	if c.Store.InMemory {
		return badger.InMemoryConfig()
	}
	cfg := badger.DefaultConfig()
	cfg.Path = c.Store.Path
	if cfg.Path == "" {
		cfg.Path = DefaultStorePath()
	}
	return cfg
}

// Apply sets the configured options on reg in name order, flags first.
// Unknown names and out-of-range values are errors.
func (o OptionsConfig) Apply(reg *options.Registry) error {
	for _, name := range sortedKeys(o.Flags) {
		id, ok := reg.ResolveFlag(name)
		if !ok {
			return fmt.Errorf("options.flags: %w: %s", options.ErrUnknownOption, name)
		}
		if _, err := reg.SetFlag(id, o.Flags[name]); err != nil {
			return fmt.Errorf("options.flags.%s: %w", name, err)
		}
	}
	for _, name := range sortedKeys(o.Parms) {
		id, ok := reg.ResolveParm(name)
		if !ok {
			return fmt.Errorf("options.parms: %w: %s", options.ErrUnknownOption, name)
		}
		if err := reg.SetParm(id, o.Parms[name]); err != nil {
			return fmt.Errorf("options.parms.%s: %w", name, err)
		}
	}
	for _, name := range sortedKeys(o.StringParms) {
		id, ok := reg.ResolveStringParm(name)
		if !ok {
			return fmt.Errorf("options.stringparms: %w: %s", options.ErrUnknownOption, name)
		}
		if err := reg.SetStringParm(id, o.StringParms[name]); err != nil {
			return fmt.Errorf("options.stringparms.%s: %w", name, err)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
