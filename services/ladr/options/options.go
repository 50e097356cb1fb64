// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package options holds the flags and parameters that input directives
// set.
//
// There are three kinds of option: boolean flags (set/clear), integer
// parameters with a range, and string parameters with a fixed set of
// values (both assigned with assign). Options are looked up by name once
// and then addressed by ID.
//
// Setting a flag may set other options. These dependencies are declared
// with the Flag*Dependency methods and are applied transitively; SetFlag
// returns what it changed so callers can report it.
//
// # Thread Safety
//
// A Registry is safe for concurrent use.
package options

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// IgnoreDependenciesFlag, when defined and true, disables dependency
// propagation.
const IgnoreDependenciesFlag = "ignore_option_dependencies"

// FlagID identifies a flag within one Registry.
type FlagID int

// ParmID identifies an integer parameter within one Registry.
type ParmID int

// StringParmID identifies a string parameter within one Registry.
type StringParmID int

// Kind is the kind of option a Consequence changed.
type Kind int

const (
	KindFlag Kind = iota
	KindParm
	KindStringParm
)

// Consequence is one option change made by dependency propagation.
type Consequence struct {
	// Cause is the directive form of the change that triggered it.
	Cause string

	Kind        Kind
	Name        string
	FlagValue   bool
	ParmValue   int
	StringValue string
}

// String returns the change in directive form, e.g. "assign(age_part, 1)".
func (c Consequence) String() string {
	switch c.Kind {
	case KindFlag:
		return flagDirective(c.Name, c.FlagValue)
	case KindParm:
		return "assign(" + c.Name + ", " + strconv.Itoa(c.ParmValue) + ")"
	default:
		return "assign(" + c.Name + ", " + c.StringValue + ")"
	}
}

func flagDirective(name string, v bool) string {
	if v {
		return "set(" + name + ")"
	}
	return "clear(" + name + ")"
}

type flag struct {
	name  string
	value bool
	def   bool
}

type parm struct {
	name     string
	value    int
	def      int
	min, max int
}

type stringParm struct {
	name    string
	value   string
	def     string
	allowed []string
}

// dependency is one action fired when a flag takes the trigger value.
type dependency struct {
	when   bool
	kind   Kind
	target int
	flag   bool
	parm   int
	str    string
}

type trigger struct {
	id    FlagID
	value bool
}

// Registry stores option definitions and current values.
type Registry struct {
	mu sync.RWMutex

	flags  []flag
	parms  []parm
	sparms []stringParm

	flagIdx  map[string]FlagID
	parmIdx  map[string]ParmID
	sparmIdx map[string]StringParmID

	deps map[FlagID][]dependency
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		flagIdx:  make(map[string]FlagID),
		parmIdx:  make(map[string]ParmID),
		sparmIdx: make(map[string]StringParmID),
		deps:     make(map[FlagID][]dependency),
	}
}

// DefineFlag adds a flag with a default value.
func (r *Registry) DefineFlag(name string, def bool) (FlagID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flagIdx[name]; ok {
		return 0, fmt.Errorf("%w: flag %s", ErrDuplicateOption, name)
	}
	id := FlagID(len(r.flags))
	r.flags = append(r.flags, flag{name: name, value: def, def: def})
	r.flagIdx[name] = id
	return id, nil
}

// DefineParm adds an integer parameter with a default and an inclusive
// range.
//
// Outputs:
//
//	ParmID - The new parameter.
//	error - ErrDuplicateOption, or *RangeError when def is outside
//	        [min, max].
func (r *Registry) DefineParm(name string, def, min, max int) (ParmID, error) {
	if def < min || def > max {
		return 0, &RangeError{Name: name, Value: def, Min: min, Max: max}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parmIdx[name]; ok {
		return 0, fmt.Errorf("%w: parm %s", ErrDuplicateOption, name)
	}
	id := ParmID(len(r.parms))
	r.parms = append(r.parms, parm{name: name, value: def, def: def, min: min, max: max})
	r.parmIdx[name] = id
	return id, nil
}

// DefineStringParm adds a string parameter. def must be one of allowed.
func (r *Registry) DefineStringParm(name, def string, allowed ...string) (StringParmID, error) {
	if !contains(allowed, def) {
		return 0, &ValueError{Name: name, Value: def, Allowed: allowed}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sparmIdx[name]; ok {
		return 0, fmt.Errorf("%w: stringparm %s", ErrDuplicateOption, name)
	}
	id := StringParmID(len(r.sparms))
	r.sparms = append(r.sparms, stringParm{
		name:    name,
		value:   def,
		def:     def,
		allowed: append([]string(nil), allowed...),
	})
	r.sparmIdx[name] = id
	return id, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ResolveFlag returns the ID of a flag by name.
func (r *Registry) ResolveFlag(name string) (FlagID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.flagIdx[name]
	return id, ok
}

// ResolveParm returns the ID of an integer parameter by name.
func (r *Registry) ResolveParm(name string) (ParmID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.parmIdx[name]
	return id, ok
}

// ResolveStringParm returns the ID of a string parameter by name.
func (r *Registry) ResolveStringParm(name string) (StringParmID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.sparmIdx[name]
	return id, ok
}

// Flag returns the current value of a flag. Unknown IDs read as false.
func (r *Registry) Flag(id FlagID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.validFlag(id) {
		return false
	}
	return r.flags[id].value
}

// Parm returns the current value of an integer parameter. Unknown IDs
// read as 0.
func (r *Registry) Parm(id ParmID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(r.parms) {
		return 0
	}
	return r.parms[id].value
}

// StringParm returns the current value of a string parameter.
func (r *Registry) StringParm(id StringParmID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(r.sparms) {
		return ""
	}
	return r.sparms[id].value
}

// FlagName returns the name of a flag, or "" for an unknown ID.
func (r *Registry) FlagName(id FlagID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.validFlag(id) {
		return ""
	}
	return r.flags[id].name
}

func (r *Registry) validFlag(id FlagID) bool {
	return int(id) >= 0 && int(id) < len(r.flags)
}

// SetFlag sets a flag and applies its dependencies.
//
// Description:
//
//	Dependencies fire every time the flag is given their trigger value,
//	even when the value does not change. A dependent flag fires its own
//	dependencies in turn; each (flag, value) pair fires at most once per
//	call. Nothing propagates while IgnoreDependenciesFlag is true.
//
// Inputs:
//
//	id - Flag from ResolveFlag.
//	value - New value.
//
// Outputs:
//
//	[]Consequence - Dependent changes in the order they were applied.
//	error - ErrUnknownOption for an ID not issued by this registry.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) SetFlag(id FlagID, value bool) ([]Consequence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.validFlag(id) {
		return nil, fmt.Errorf("%w: flag id %d", ErrUnknownOption, id)
	}
	r.flags[id].value = value

	var out []Consequence
	if r.ignoringDependencies() {
		return out, nil
	}
	seen := map[trigger]bool{{id, value}: true}
	r.propagate(id, value, seen, &out)
	return out, nil
}

func (r *Registry) ignoringDependencies() bool {
	id, ok := r.flagIdx[IgnoreDependenciesFlag]
	return ok && r.flags[id].value
}

func (r *Registry) propagate(id FlagID, value bool, seen map[trigger]bool, out *[]Consequence) {
	cause := flagDirective(r.flags[id].name, value)
	for _, d := range r.deps[id] {
		if d.when != value {
			continue
		}
		c := Consequence{Cause: cause, Kind: d.kind}
		switch d.kind {
		case KindFlag:
			target := FlagID(d.target)
			r.flags[target].value = d.flag
			c.Name, c.FlagValue = r.flags[target].name, d.flag
			*out = append(*out, c)
			next := trigger{target, d.flag}
			if !seen[next] {
				seen[next] = true
				r.propagate(target, d.flag, seen, out)
			}
		case KindParm:
			r.parms[d.target].value = d.parm
			c.Name, c.ParmValue = r.parms[d.target].name, d.parm
			*out = append(*out, c)
		case KindStringParm:
			r.sparms[d.target].value = d.str
			c.Name, c.StringValue = r.sparms[d.target].name, d.str
			*out = append(*out, c)
		}
	}
}

// SetParm assigns an integer parameter.
//
// Outputs:
//
//	error - ErrUnknownOption, or *RangeError (Is ErrOutOfRange). The
//	        value is unchanged on error.
func (r *Registry) SetParm(id ParmID, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(id) < 0 || int(id) >= len(r.parms) {
		return fmt.Errorf("%w: parm id %d", ErrUnknownOption, id)
	}
	p := &r.parms[id]
	if value < p.min || value > p.max {
		return &RangeError{Name: p.name, Value: value, Min: p.min, Max: p.max}
	}
	p.value = value
	return nil
}

// SetStringParm assigns a string parameter.
//
// Outputs:
//
//	error - ErrUnknownOption, or *ValueError (Is ErrBadValue).
func (r *Registry) SetStringParm(id StringParmID, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(id) < 0 || int(id) >= len(r.sparms) {
		return fmt.Errorf("%w: stringparm id %d", ErrUnknownOption, id)
	}
	p := &r.sparms[id]
	if !contains(p.allowed, value) {
		return &ValueError{Name: p.name, Value: value, Allowed: p.allowed}
	}
	p.value = value
	return nil
}

// FlagFlagDependency makes setting flag to when also set target to value.
func (r *Registry) FlagFlagDependency(flag FlagID, when bool, target FlagID, value bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.validFlag(flag) || !r.validFlag(target) {
		return fmt.Errorf("%w: flag dependency %d -> %d", ErrUnknownOption, flag, target)
	}
	r.deps[flag] = append(r.deps[flag], dependency{when: when, kind: KindFlag, target: int(target), flag: value})
	return nil
}

// FlagParmDependency makes setting flag to when also assign target.
func (r *Registry) FlagParmDependency(flag FlagID, when bool, target ParmID, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.validFlag(flag) || int(target) < 0 || int(target) >= len(r.parms) {
		return fmt.Errorf("%w: parm dependency %d -> %d", ErrUnknownOption, flag, target)
	}
	p := r.parms[target]
	if value < p.min || value > p.max {
		return &RangeError{Name: p.name, Value: value, Min: p.min, Max: p.max}
	}
	r.deps[flag] = append(r.deps[flag], dependency{when: when, kind: KindParm, target: int(target), parm: value})
	return nil
}

// FlagStringParmDependency makes setting flag to when also assign target.
func (r *Registry) FlagStringParmDependency(flag FlagID, when bool, target StringParmID, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.validFlag(flag) || int(target) < 0 || int(target) >= len(r.sparms) {
		return fmt.Errorf("%w: stringparm dependency %d -> %d", ErrUnknownOption, flag, target)
	}
	p := r.sparms[target]
	if !contains(p.allowed, value) {
		return &ValueError{Name: p.name, Value: value, Allowed: p.allowed}
	}
	r.deps[flag] = append(r.deps[flag], dependency{when: when, kind: KindStringParm, target: int(target), str: value})
	return nil
}

// Snapshot is a point-in-time copy of option values keyed by name.
type Snapshot struct {
	Flags       map[string]bool   `json:"flags,omitempty"`
	Parms       map[string]int    `json:"parms,omitempty"`
	StringParms map[string]string `json:"stringparms,omitempty"`
}

// Snapshot returns every option value.
func (r *Registry) Snapshot() Snapshot {
	return r.snapshot(false)
}

// Changed returns the options whose value differs from the default.
func (r *Registry) Changed() Snapshot {
	return r.snapshot(true)
}

func (r *Registry) snapshot(changedOnly bool) Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Snapshot{
		Flags:       make(map[string]bool),
		Parms:       make(map[string]int),
		StringParms: make(map[string]string),
	}
	for _, f := range r.flags {
		if !changedOnly || f.value != f.def {
			s.Flags[f.name] = f.value
		}
	}
	for _, p := range r.parms {
		if !changedOnly || p.value != p.def {
			s.Parms[p.name] = p.value
		}
	}
	for _, p := range r.sparms {
		if !changedOnly || p.value != p.def {
			s.StringParms[p.name] = p.value
		}
	}
	return s
}

// Directives renders the snapshot as set/clear/assign directives in name
// order.
func (s Snapshot) Directives() []string {
	var out []string
	for _, name := range sortedKeys(s.Flags) {
		out = append(out, flagDirective(name, s.Flags[name])+".")
	}
	for _, name := range sortedKeys(s.Parms) {
		out = append(out, "assign("+name+", "+strconv.Itoa(s.Parms[name])+").")
	}
	for _, name := range sortedKeys(s.StringParms) {
		out = append(out, "assign("+name+", "+s.StringParms[name]+").")
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
