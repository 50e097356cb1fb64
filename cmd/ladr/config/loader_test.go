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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianLADR/pkg/logging"
	"github.com/AleutianAI/AleutianLADR/services/ladr/options"
	"github.com/AleutianAI/AleutianLADR/services/ladr/topinput"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LADR_CONFIG", "LADR_UNKNOWN_ACTION", "LADR_LOG_LEVEL", "LADR_STORE_PATH", "OTEL_TRACES_EXPORTER", "OTEL_METRICS_EXPORTER"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ladr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, "\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
unknown_action: warn
echo: true
wildcard_fallback: false
strict_arity: true
lists:
  - name: sos
  - name: "*"
    kind: terms
logging:
  level: debug
  json: true
telemetry:
  metric_exporter: prometheus
  prometheus_port: 9464
store:
  in_memory: true
options:
  flags: {auto: false}
  parms: {max_weight: 30}
  stringparms: {order: kbo}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.UnknownAction)
	assert.True(t, cfg.Echo)
	assert.False(t, cfg.WildcardFallback)
	assert.True(t, cfg.StrictArity)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 9464, cfg.Telemetry.PrometheusPort)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter, "unset keys keep defaults")
	assert.True(t, cfg.Store.InMemory)

	ic, err := cfg.InterpreterConfig()
	require.NoError(t, err)
	assert.Equal(t, topinput.UnknownWarn, ic.Unknown)
	assert.True(t, ic.DisableWildcard)
	assert.Equal(t, []topinput.ListSpec{
		{Name: "sos", Kind: topinput.FormulaList},
		{Name: "*", Kind: topinput.TermList},
	}, ic.Lists)

	lc, err := cfg.LoggerConfig("ladr")
	require.NoError(t, err)
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.True(t, lc.JSON)

	assert.True(t, cfg.StoreSettings().InMemory)
	assert.Equal(t, "prometheus", cfg.TelemetrySettings().MetricExporter)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LADR_UNKNOWN_ACTION", "ignore")
	t.Setenv("LADR_STORE_PATH", "/tmp/runs")
	t.Setenv("OTEL_TRACES_EXPORTER", "stdout")

	cfg, err := Load(writeFile(t, "unknown_action: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, "ignore", cfg.UnknownAction)
	assert.Equal(t, "/tmp/runs", cfg.StoreSettings().Path)
	assert.Equal(t, "stdout", cfg.TelemetrySettings().TraceExporter)
}

func TestLoad_DefaultPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "echo: true\n")
	t.Setenv("LADR_CONFIG", path)
	assert.Equal(t, path, DefaultPath())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Echo)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad unknown action", "unknown_action: shout\n", "UnknownAction"},
		{"bad log level", "logging: {level: loud}\n", "loglevel"},
		{"bad exporter", "telemetry: {trace_exporter: zipkin}\n", "TraceExporter"},
		{"bad port", "telemetry: {prometheus_port: 70000}\n", "PrometheusPort"},
		{"list without name", "lists: [{kind: terms}]\n", "Name"},
		{"bad list kind", "lists: [{name: a, kind: clauses}]\n", "Kind"},
		{"unknown key", "ecko: true\n", "ecko"},
		{"not yaml", "lists: [\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeFile(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_WrapsSentinel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UnknownAction = "nope"
	assert.ErrorIs(t, Validate(cfg), ErrInvalidConfig)
	assert.NoError(t, Validate(DefaultConfig()))
}

func TestWriteDefault(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".aleutian", "ladr.yaml")
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got LADRConfig
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, DefaultConfig(), got)

	assert.ErrorIs(t, WriteDefault(path), os.ErrExist)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestOptionsConfig_Apply(t *testing.T) {
	reg := options.NewStandard()
	oc := OptionsConfig{
		Flags:       map[string]bool{options.FlagQuiet: true},
		Parms:       map[string]int{options.ParmMaxWeight: 25},
		StringParms: map[string]string{options.StringParmOrder: "kbo"},
	}
	require.NoError(t, oc.Apply(reg))

	fid, _ := reg.ResolveFlag(options.FlagQuiet)
	assert.True(t, reg.Flag(fid))
	pid, _ := reg.ResolveParm(options.ParmMaxWeight)
	assert.Equal(t, 25, reg.Parm(pid))
	sid, _ := reg.ResolveStringParm(options.StringParmOrder)
	assert.Equal(t, "kbo", reg.StringParm(sid))

	err := OptionsConfig{Flags: map[string]bool{"no_such_flag": true}}.Apply(options.NewStandard())
	assert.ErrorIs(t, err, options.ErrUnknownOption)

	err = OptionsConfig{StringParms: map[string]string{options.StringParmOrder: "xyz"}}.Apply(options.NewStandard())
	assert.ErrorIs(t, err, options.ErrBadValue)
}
