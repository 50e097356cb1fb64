// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads ladr.yaml.
//
// Precedence, lowest first: DefaultConfig, the file, environment
// variables. Command-line flags are applied by the caller on top.
//
//	LADR_CONFIG            path of the file (default ~/.aleutian/ladr.yaml)
//	LADR_UNKNOWN_ACTION    unknown_action
//	LADR_LOG_LEVEL         logging.level
//	LADR_STORE_PATH        store.path
//	OTEL_TRACES_EXPORTER   telemetry.trace_exporter
//	OTEL_METRICS_EXPORTER  telemetry.metric_exporter
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianLADR/pkg/logging"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, err := logging.ParseLevel(fl.Field().String())
		return err == nil
	})
}

// DefaultPath returns $LADR_CONFIG or ~/.aleutian/ladr.yaml.
func DefaultPath() string {
	if p := os.Getenv("LADR_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "ladr.yaml"
	}
	return filepath.Join(home, ".aleutian", "ladr.yaml")
}

// Load reads the file at path, or DefaultPath when path is empty.
//
// Description:
//
//	A missing file is not an error: the defaults are used. Unknown keys in
//	the file are rejected so that typos surface. Environment overrides are
//	applied after the file and the result is validated.
//
// Outputs:
//
//	LADRConfig - The effective configuration.
//	error - Read, parse, or ErrInvalidConfig failures.
func Load(path string) (LADRConfig, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := decode(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(data []byte, cfg *LADRConfig) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func applyEnv(cfg *LADRConfig) {
	cfg.UnknownAction = getEnvOr("LADR_UNKNOWN_ACTION", cfg.UnknownAction)
	cfg.Logging.Level = getEnvOr("LADR_LOG_LEVEL", cfg.Logging.Level)
	cfg.Store.Path = getEnvOr("LADR_STORE_PATH", cfg.Store.Path)
	cfg.Telemetry.TraceExporter = getEnvOr("OTEL_TRACES_EXPORTER", cfg.Telemetry.TraceExporter)
	cfg.Telemetry.MetricExporter = getEnvOr("OTEL_METRICS_EXPORTER", cfg.Telemetry.MetricExporter)
}

// Validate checks field constraints.
func Validate(cfg LADRConfig) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]error, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(msgs...))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// WriteDefault writes DefaultConfig to path, creating its directory. An
// existing file is left alone and reported with os.ErrExist.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, os.ErrExist)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal renders cfg as YAML.
func Marshal(cfg LADRConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
