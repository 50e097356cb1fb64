// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianLADR/services/ladr/formula"
	"github.com/AleutianAI/AleutianLADR/services/ladr/options"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
	"github.com/AleutianAI/AleutianLADR/services/ladr/topinput"
)

var (
	// ErrRunNotFound is returned when no run matches an ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousID is returned when an ID prefix matches several runs.
	ErrAmbiguousID = errors.New("run id prefix is ambiguous")

	// ErrInvalidRunID is returned by Save for an ID that is not a UUID.
	ErrInvalidRunID = errors.New("run id is not a uuid")
)

const runKeyPrefix = "ladr/run/"

// Run is the stored record of one interpretation.
type Run struct {
	ID         string           `json:"id"`
	Created    time.Time        `json:"created"`
	Streams    []string         `json:"streams"`
	Directives int              `json:"directives"`
	Options    options.Snapshot `json:"options"`
	Lists      []List           `json:"lists"`
	Symbols    []Symbol         `json:"symbols"`

	// Error is set when the interpretation failed part way.
	Error string `json:"error,omitempty"`
}

// List is a readlist with its items printed.
type List struct {
	Name  string   `json:"name"`
	Kind  string   `json:"kind"`
	Items []string `json:"items"`
}

// Symbol is one symbol table entry.
type Symbol struct {
	Name       string `json:"name"`
	Arity      int    `json:"arity"`
	Kind       string `json:"kind"`
	ParseType  string `json:"parse_type,omitempty"`
	Precedence int    `json:"precedence,omitempty"`
	LexVal     int    `json:"lex_val,omitempty"`
	Skolem     bool   `json:"skolem,omitempty"`
}

type changeReporter interface {
	Changed() options.Snapshot
}

// NewRun captures res as a Run with a fresh ID.
//
// Only options that differ from their defaults are captured, and only
// when res.Options can report them. A nil runErr is recorded as success.
func NewRun(res *topinput.Result, runErr error) *Run {
	run := &Run{
		ID:         uuid.NewString(),
		Created:    time.Now().UTC(),
		Streams:    append([]string(nil), res.Streams...),
		Directives: res.Directives,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if s, ok := res.Options.(changeReporter); ok {
		run.Options = s.Changed()
	}

	tab := res.Symbols
	for _, l := range res.Lists {
		stored := List{Name: l.Name, Kind: l.Kind.String(), Items: make([]string, 0, l.Len())}
		if l.Kind == topinput.TermList {
			for _, t := range l.Terms {
				stored.Items = append(stored.Items, term.Sprint(tab, t))
			}
		} else {
			for _, f := range l.Formulas {
				stored.Items = append(stored.Items, formula.Sprint(tab, f))
			}
		}
		run.Lists = append(run.Lists, stored)
	}

	if tab != nil {
		for _, s := range tab.All() {
			sym := Symbol{
				Name:   s.Name,
				Arity:  s.Arity,
				Kind:   s.Kind.String(),
				LexVal: s.LexVal,
				Skolem: s.Skolem,
			}
			if s.Parse.Precedence > 0 {
				sym.ParseType = s.Parse.Type.String()
				sym.Precedence = s.Parse.Precedence
			}
			run.Symbols = append(run.Symbols, sym)
		}
	}
	return run
}

// RunStore saves and loads runs.
type RunStore struct {
	db *DB
}

// NewRunStore creates a store over an open database. The store does not
// own db.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

func runKey(id string) []byte {
	return []byte(runKeyPrefix + id)
}

// Save writes run. An empty ID is replaced with a new UUID.
//
// Outputs:
//
//	error - ErrInvalidRunID, a context error, or a write failure.
func (s *RunStore) Save(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if _, err := uuid.Parse(run.ID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, run.ID)
	}
	if run.Created.IsZero() {
		run.Created = time.Now().UTC()
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return txn.Set(runKey(run.ID), data)
	})
}

// Load returns the run whose ID is id or starts with id.
//
// Outputs:
//
//	*Run - The run.
//	error - ErrRunNotFound, ErrAmbiguousID, or a read failure.
func (s *RunStore) Load(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, ErrRunNotFound
	}
	var found []*Run
	err := s.scan(ctx, runKeyPrefix+id, func(run *Run) {
		found = append(found, run)
	})
	if err != nil {
		return nil, err
	}
	for _, run := range found {
		if run.ID == id {
			return run, nil
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s matches %d runs", ErrAmbiguousID, id, len(found))
	}
}

// List returns every run, newest first.
func (s *RunStore) List(ctx context.Context) ([]*Run, error) {
	var runs []*Run
	if err := s.scan(ctx, runKeyPrefix, func(run *Run) {
		runs = append(runs, run)
	}); err != nil {
		return nil, err
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Created.After(runs[j].Created)
	})
	return runs, nil
}

// Delete removes the run with exactly this ID.
func (s *RunStore) Delete(ctx context.Context, id string) error {
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(runKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrRunNotFound, id)
			}
			return err
		}
		return txn.Delete(runKey(id))
	})
}

func (s *RunStore) scan(ctx context.Context, prefix string, fn func(*Run)) error {
	p := []byte(prefix)
	return s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			var run Run
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &run)
			})
			if err != nil {
				key := strings.TrimPrefix(string(item.Key()), runKeyPrefix)
				return fmt.Errorf("decode run %s: %w", key, err)
			}
			fn(&run)
		}
		return nil
	})
}
