// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package badger stores interpreted LADR runs in an embedded BadgerDB.
//
// A run is everything an interpretation produced that is worth looking at
// later: the printed readlists, the effective option values and the symbol
// table. Runs are written once and never updated.
//
// # Thread Safety
//
// DB and RunStore are safe for concurrent use.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrPathRequired is returned when a persistent database has no path.
var ErrPathRequired = errors.New("path is required for persistent database")

// Config holds configuration for a BadgerDB instance.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory.
	Path string

	// InMemory keeps everything in RAM. Used by tests and --store=memory.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// Logger receives BadgerDB's own log lines. Nil silences them.
	Logger *slog.Logger

	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval time.Duration

	// GCDiscardRatio is the garbage ratio that triggers a rewrite.
	GCDiscardRatio float64
}

// DefaultConfig returns the settings used for an on-disk run store.
func DefaultConfig() Config {
	return Config{
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns settings for a throwaway store.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// DB wraps a BadgerDB instance with lifecycle management.
type DB struct {
	*badger.DB
	gc       *gcRunner
	path     string
	inMemory bool
}

// Open opens a database and starts value log GC if configured.
//
// Description:
//
//	Opens the database at cfg.Path, creating the directory if needed, or
//	in memory when cfg.InMemory is set. GC never runs for in-memory
//	databases.
//
// Inputs:
//
//	cfg - Database configuration. Path is required unless InMemory.
//
// Outputs:
//
//	*DB - The opened database. Caller must call Close().
//	error - ErrPathRequired, or the open failure.
//
// Thread Safety: The returned *DB is safe for concurrent use.
func Open(cfg Config) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, ErrPathRequired
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	d := &DB{DB: db, path: cfg.Path, inMemory: cfg.InMemory}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		d.gc = startGC(db, cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
	}
	return d, nil
}

// OpenInMemory opens an empty in-memory database.
func OpenInMemory() (*DB, error) {
	return Open(InMemoryConfig())
}

// Close stops GC and closes the database.
func (d *DB) Close() error {
	if d.gc != nil {
		d.gc.stop()
	}
	return d.DB.Close()
}

// Path returns the database directory, or "" in memory.
func (d *DB) Path() string {
	return d.path
}

// InMemory reports whether the database is in memory.
func (d *DB) InMemory() bool {
	return d.inMemory
}

// WithTxn runs fn in a read-write transaction and commits if fn returns
// nil.
func (d *DB) WithTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	txn := d.DB.NewTransaction(true)
	defer txn.Discard()

	if err := fn(txn); err != nil {
		return err
	}
	return txn.Commit()
}

// WithReadTxn runs fn in a read-only transaction.
func (d *DB) WithReadTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	txn := d.DB.NewTransaction(false)
	defer txn.Discard()

	return fn(txn)
}

type gcRunner struct {
	db     *badger.DB
	ratio  float64
	logger *slog.Logger
	stopCh chan struct{}
	doneCh chan struct{}
}

func startGC(db *badger.DB, interval time.Duration, ratio float64, logger *slog.Logger) *gcRunner {
	if ratio <= 0 || ratio > 1 {
		ratio = 0.5
	}
	r := &gcRunner{
		db:     db,
		ratio:  ratio,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go r.run(interval)
	return r
}

func (r *gcRunner) stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *gcRunner) run(interval time.Duration) {
	defer close(r.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			// ErrNoRewrite means there was nothing to collect.
			err := r.db.RunValueLogGC(r.ratio)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) && r.logger != nil {
				r.logger.Warn("badger value log GC error", slog.String("error", err.Error()))
			}
		}
	}
}
