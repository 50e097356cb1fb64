// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianLADR/services/ladr/formula"
	"github.com/AleutianAI/AleutianLADR/services/ladr/storage/badger"
	"github.com/AleutianAI/AleutianLADR/services/ladr/telemetry"
	"github.com/AleutianAI/AleutianLADR/services/ladr/term"
	"github.com/AleutianAI/AleutianLADR/services/ladr/topinput"
)

type readFlags struct {
	echo     bool
	clausify bool
	store    bool
}

func (a *app) readCmd() *cobra.Command {
	var f readFlags
	cmd := &cobra.Command{
		Use:   "read [files...]",
		Short: "Interpret input files in order and print the lists",
		Long: `Interpret the files as one input, in the order given, and print every list.
Standard input is read when no file is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRead(cmd.Context(), args, f)
		},
	}
	cmd.Flags().BoolVar(&f.echo, "echo", false, "print each directive as it is applied")
	cmd.Flags().BoolVar(&f.clausify, "clausify", false, "also print the clauses of every formula list")
	cmd.Flags().BoolVar(&f.store, "store", false, "save the run in the run store")
	return cmd
}

func (a *app) runRead(ctx context.Context, paths []string, f readFlags) error {
	ctx, span := telemetry.StartSpan(ctx, "aleutian.ladr.cmd", "ladr.read")
	defer span.End()

	srcs, closeAll, err := a.openSources(paths)
	if err != nil {
		return err
	}
	defer closeAll()

	var echo io.Writer
	if f.echo {
		echo = a.stdout
	}
	out := a.interpret(ctx, echo, srcs...)
	telemetry.RecordError(span, out.Err)

	if f.store {
		if err := a.storeRun(ctx, out); err != nil {
			return err
		}
	}
	if out.Err != nil {
		return out.Err
	}

	w := bufio.NewWriter(a.stdout)
	if err := writeResult(w, out.Result, f.clausify); err != nil {
		return err
	}
	return w.Flush()
}

func (a *app) storeRun(ctx context.Context, out interpretation) error {
	db, err := badger.Open(a.cfg.StoreSettings())
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer db.Close()

	run := badger.NewRun(out.Result, out.Err)
	if err := badger.NewRunStore(db).Save(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	telemetry.LoggerWithTrace(ctx, a.logger.Slog()).Info("run stored", "id", run.ID, "path", db.Path())
	fmt.Fprintf(a.stderr, "stored run %s\n", run.ID)
	return nil
}

// writeResult prints every list in LADR syntax.
func writeResult(w io.Writer, res *topinput.Result, clausify bool) error {
	for i, l := range res.Lists {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if l.Kind == topinput.TermList {
			fmt.Fprintf(w, "list(%s).\n", l.Name)
			for _, t := range l.Terms {
				fmt.Fprintf(w, "%s.\n", term.Sprint(res.Symbols, t))
			}
			fmt.Fprintln(w, topinput.EndOfList+".")
			continue
		}

		fmt.Fprintf(w, "formulas(%s).\n", l.Name)
		for _, f := range l.Formulas {
			fmt.Fprintf(w, "%s.\n", formula.Sprint(res.Symbols, f))
		}
		fmt.Fprintln(w, topinput.EndOfList+".")

		if clausify {
			fmt.Fprintf(w, "\nclauses(%s).\n", l.Name)
			for _, f := range l.Formulas {
				cnf, err := formula.ClausifyPrepare(res.Symbols, f)
				if err != nil {
					return fmt.Errorf("clausify %s: %w", formula.Sprint(res.Symbols, f), err)
				}
				for _, c := range formula.Clauses(cnf) {
					if c.IsTrue() {
						continue
					}
					fmt.Fprintf(w, "%s.\n", formula.Sprint(res.Symbols, c))
				}
			}
			fmt.Fprintln(w, topinput.EndOfList+".")
		}
	}
	return nil
}
