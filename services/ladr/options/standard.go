// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package options

import (
	"fmt"
	"math"
)

// Names of standard options that other packages read.
const (
	FlagAuto                 = "auto"
	FlagPrologStyleVariables = "prolog_style_variables"
	FlagEchoInput            = "echo_input"
	FlagQuiet                = "quiet"
	ParmMaxSeconds           = "max_seconds"
	ParmMaxWeight            = "max_weight"
	StringParmOrder          = "order"
)

const inf = math.MaxInt32

var standardFlags = []struct {
	name string
	def  bool
}{
	{"prolog_style_variables", false},
	{"ignore_option_dependencies", false},
	{"clocks", false},
	{"echo_input", true},
	{"quiet", false},
	{"bell", true},

	{"auto", true},
	{"auto2", false},
	{"auto_setup", true},
	{"auto_limits", true},
	{"auto_denials", true},
	{"auto_inference", true},
	{"auto_process", true},
	{"raw", false},
	{"production", false},

	{"print_initial_clauses", true},
	{"print_given", true},
	{"print_gen", false},
	{"print_kept", false},
	{"print_labeled", false},
	{"print_clause_properties", false},

	{"binary_resolution", false},
	{"neg_binary_resolution", false},
	{"hyper_resolution", false},
	{"pos_hyper_resolution", false},
	{"neg_hyper_resolution", false},
	{"ur_resolution", false},
	{"paramodulation", false},
	{"ordered_res", true},
	{"ordered_para", true},
	{"check_res_instances", false},
	{"para_units_only", false},
	{"factor", false},
	{"unit_deletion", false},
	{"back_demod", false},
	{"lex_dep_demod", true},
	{"back_subsume", true},
	{"safe_unit_conflict", false},
	{"reuse_denials", false},
	{"restrict_denials", false},

	{"process_initial_sos", true},
	{"sort_initial_sos", false},
	{"input_sos_first", true},
	{"predicate_elim", true},
	{"eval_rewrite", false},
	{"expand_relational_defs", false},
	{"dont_flip_input", false},
	{"breadth_first", false},
	{"lightest_first", false},
	{"degrade_hints", true},
}

var standardParms = []struct {
	name     string
	def      int
	min, max int
}{
	{"max_seconds", -1, -1, inf},
	{"max_given", -1, -1, inf},
	{"max_kept", -1, -1, inf},
	{"max_proofs", 1, -1, inf},
	{"max_megs", 200, -1, inf},
	{"max_weight", 100, -inf, inf},
	{"max_depth", -1, -1, inf},
	{"max_vars", -1, -1, inf},
	{"max_literals", -1, -1, inf},
	{"sos_limit", 20000, -1, inf},
	{"min_sos_limit", 0, 0, inf},
	{"lrs_interval", 50, 1, inf},
	{"lrs_ticks", -1, -1, inf},
	{"report", -1, -1, inf},
	{"report_stderr", -1, -1, inf},
	{"pick_given_ratio", -1, -1, inf},
	{"hints_part", inf, 0, inf},
	{"age_part", 1, 0, inf},
	{"weight_part", 0, 0, inf},
	{"false_part", 4, 0, inf},
	{"true_part", 4, 0, inf},
	{"random_part", 0, 0, inf},
	{"random_seed", 0, -1, inf},
	{"eval_limit", 1024, -1, inf},
	{"demod_step_limit", 1000, -1, inf},
	{"demod_size_limit", 1000, -1, inf},
	{"backsub_check", 500, -1, inf},
	{"new_constants", 0, -1, inf},
	{"fold_denial_max", 0, -1, inf},
	{"sk_constant_weight", 1, -inf, inf},
	{"prop_atom_weight", 1, -inf, inf},
	{"skolem_penalty", 1, 0, inf},
	{"nest_penalty", 0, 0, inf},
	{"variable_weight", 1, -inf, inf},
	{"constant_weight", 1, -inf, inf},
	{"default_weight", 1, -inf, inf},
}

var standardStringParms = []struct {
	name    string
	def     string
	allowed []string
}{
	{"order", "lpo", []string{"lpo", "rpo", "kbo"}},
	{"eq_defs", "unfold", []string{"unfold", "fold", "pass"}},
	{"literal_selection", "max_negative", []string{"max_negative", "all_negative", "none"}},
	{"stats", "lots", []string{"none", "some", "lots", "all"}},
	{"multiple_interps", "false", []string{"false", "true"}},
}

type flagDep struct {
	flag  string
	when  bool
	other string
	value bool
}

type parmDep struct {
	flag  string
	when  bool
	parm  string
	value int
}

type stringDep struct {
	flag  string
	when  bool
	parm  string
	value string
}

var standardFlagDeps = []flagDep{
	{"auto", true, "auto_setup", true},
	{"auto", true, "auto_limits", true},
	{"auto", true, "auto_denials", true},
	{"auto", true, "auto_inference", true},
	{"auto", true, "auto_process", true},
	{"auto", false, "auto_setup", false},
	{"auto", false, "auto_limits", false},
	{"auto", false, "auto_denials", false},
	{"auto", false, "auto_inference", false},
	{"auto", false, "auto_process", false},

	{"auto2", true, "auto", true},
	{"auto2", true, "sort_initial_sos", true},
	{"auto2", true, "echo_input", false},

	{"raw", true, "auto", false},
	{"raw", true, "ordered_res", false},
	{"raw", true, "ordered_para", false},
	{"raw", true, "lex_dep_demod", false},
	{"raw", true, "back_subsume", false},
	{"raw", true, "predicate_elim", false},
	{"raw", true, "process_initial_sos", false},
	{"raw", false, "auto", true},
	{"raw", false, "ordered_res", true},
	{"raw", false, "ordered_para", true},
	{"raw", false, "lex_dep_demod", true},
	{"raw", false, "back_subsume", true},
	{"raw", false, "predicate_elim", true},
	{"raw", false, "process_initial_sos", true},

	{"production", true, "raw", true},
	{"production", true, "print_initial_clauses", false},
	{"production", true, "print_given", false},
	{"production", true, "print_kept", false},

	{"quiet", true, "bell", false},
}

var standardParmDeps = []parmDep{
	{"auto2", true, "new_constants", 1},
	{"auto2", true, "fold_denial_max", 3},
	{"auto2", true, "max_weight", 200},
	{"auto2", true, "nest_penalty", 1},
	{"auto2", true, "skolem_penalty", 3},
	{"auto2", true, "sk_constant_weight", 0},
	{"auto2", true, "prop_atom_weight", 5},
	{"auto2", true, "sos_limit", -1},
	{"auto2", true, "lrs_ticks", 3000},
	{"auto2", true, "max_megs", 400},

	{"raw", true, "max_weight", inf},
	{"raw", true, "sos_limit", -1},

	{"breadth_first", true, "age_part", 1},
	{"breadth_first", true, "weight_part", 0},
	{"breadth_first", true, "false_part", 0},
	{"breadth_first", true, "true_part", 0},
	{"breadth_first", true, "random_part", 0},

	{"lightest_first", true, "weight_part", 1},
	{"lightest_first", true, "age_part", 0},
	{"lightest_first", true, "false_part", 0},
	{"lightest_first", true, "true_part", 0},
	{"lightest_first", true, "random_part", 0},
}

var standardStringDeps = []stringDep{
	{"auto2", true, "stats", "some"},
	{"raw", true, "literal_selection", "none"},
	{"raw", false, "literal_selection", "max_negative"},
	{"production", true, "stats", "none"},
}

// NewStandard creates a registry holding the standard prover options and
// their dependencies.
//
// Outputs:
//
//	*Registry - A fresh registry with default values. Each call returns an
//	            independent registry.
func NewStandard() *Registry {
	r := New()
	if err := r.defineStandard(); err != nil {
		panic(fmt.Sprintf("options: standard table: %v", err))
	}
	return r
}

func (r *Registry) defineStandard() error {
	for _, f := range standardFlags {
		if _, err := r.DefineFlag(f.name, f.def); err != nil {
			return err
		}
	}
	for _, p := range standardParms {
		if _, err := r.DefineParm(p.name, p.def, p.min, p.max); err != nil {
			return err
		}
	}
	for _, p := range standardStringParms {
		if _, err := r.DefineStringParm(p.name, p.def, p.allowed...); err != nil {
			return err
		}
	}

	for _, d := range standardFlagDeps {
		flag, ok1 := r.ResolveFlag(d.flag)
		other, ok2 := r.ResolveFlag(d.other)
		if !ok1 || !ok2 {
			return fmt.Errorf("%w: %s -> %s", ErrUnknownOption, d.flag, d.other)
		}
		if err := r.FlagFlagDependency(flag, d.when, other, d.value); err != nil {
			return err
		}
	}
	for _, d := range standardParmDeps {
		flag, ok1 := r.ResolveFlag(d.flag)
		parm, ok2 := r.ResolveParm(d.parm)
		if !ok1 || !ok2 {
			return fmt.Errorf("%w: %s -> %s", ErrUnknownOption, d.flag, d.parm)
		}
		if err := r.FlagParmDependency(flag, d.when, parm, d.value); err != nil {
			return err
		}
	}
	for _, d := range standardStringDeps {
		flag, ok1 := r.ResolveFlag(d.flag)
		parm, ok2 := r.ResolveStringParm(d.parm)
		if !ok1 || !ok2 {
			return fmt.Errorf("%w: %s -> %s", ErrUnknownOption, d.flag, d.parm)
		}
		if err := r.FlagStringParmDependency(flag, d.when, parm, d.value); err != nil {
			return err
		}
	}
	return nil
}
